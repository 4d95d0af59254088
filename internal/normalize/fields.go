package normalize

// DestinationField is one column of the fixed lead schema together with the rules used
// to find its value in an imported record.
type DestinationField struct {
	Name     string // JSON name of the column
	Column   string // database column
	Header   string // grid header shown to the user
	Variants []string
	Paths    []string

	// Optional fields are left unset rather than stored as "".
	Optional bool
}

// Resolve runs the field resolver with this field's variants and paths.
func (f DestinationField) Resolve(record Record) string {
	return Resolve(record, f.Variants, f.Paths)
}

var (
	FirstName = DestinationField{
		Name: "firstName", Column: "first_name", Header: "First Name",
		Variants: []string{"firstName", "first_name", "First Name", "firstname", "first"},
	}
	LastName = DestinationField{
		Name: "lastName", Column: "last_name", Header: "Last Name",
		Variants: []string{"lastName", "last_name", "Last Name", "lastname", "last"},
	}
	Email = DestinationField{
		Name: "email", Column: "email", Header: "Email",
		Variants: []string{"email", "Email", "e-mail", "emailAddress"},
		Optional: true,
	}
	AIPersonalizedEmail = DestinationField{
		Name: "aiPersonalizedEmail", Column: "ai_personalized_email", Header: "AI Personalized Email",
		Variants: []string{"aiPersonalizedEmail", "AI Personalized Email", "emailTemplate", "Email Template"},
		Optional: true,
	}
	CurrentPosition = DestinationField{
		Name: "currentPosition", Column: "current_position", Header: "Current Position",
		Variants: []string{"currentPosition", "current_position", "Current Position", "title", "jobTitle", "position"},
		Paths:    []string{"currentPosition.title"},
	}
	Location = DestinationField{
		Name: "location", Column: "location", Header: "Location",
		Variants: []string{"location", "Location", "city", "City", "country", "Country"},
		Paths:    []string{"geoRegion", "currentPosition.location", "currentPosition.companyUrnResolutionResult.location"},
	}
	ProfileSummary = DestinationField{
		Name: "profileSummary", Column: "profile_summary", Header: "Profile Summary",
		Variants: []string{"profileSummary", "profile_summary", "Profile Summary", "summary", "Summary", "about", "About"},
	}
	Specialities = DestinationField{
		Name: "specialities", Column: "specialities", Header: "Specialities",
		Variants: []string{"specialities", "specialties", "Specialities", "skills", "Skills", "skillset"},
		Paths:    []string{"skills", "skills.list"},
	}
	LinkedinURL = DestinationField{
		Name: "linkedinUrl", Column: "linkedin_url", Header: "Linkedin Url",
		Variants: []string{"linkedinUrl", "linkedin_url", "Linkedin Url", "linkedin", "LinkedIn", "linkedin_profile", "linkedinProfile"},
		Paths:    []string{"navigationUrl", "profile.navigationUrl"},
	}
	CompanyName = DestinationField{
		Name: "companyName", Column: "company_name", Header: "Company Name",
		Variants: []string{"companyName", "company_name", "Company Name", "company", "Company", "employer"},
		Paths:    []string{"currentPosition.companyName", "company.name"},
	}
	Industry = DestinationField{
		Name: "industry", Column: "industry", Header: "Industry",
		Variants: []string{"industry", "Industry", "sector", "Sector"},
		Paths:    []string{"currentPosition.companyUrnResolutionResult.industry", "company.industry"},
	}
	TenureAtPosition = DestinationField{
		Name: "tenureAtPosition", Column: "tenure_at_position", Header: "Tenure at Position",
		Variants: []string{"tenureAtPosition", "tenure_at_position", "Tenure at Position", "years_in_role", "yearsInRole", "position_tenure"},
		Paths:    []string{"currentPosition.tenureAtPosition"},
	}
	TenureAtCompany = DestinationField{
		Name: "tenureAtCompany", Column: "tenure_at_company", Header: "Tenure at Company",
		Variants: []string{"tenureAtCompany", "tenure_at_company", "Tenure at Company", "years_at_company", "yearsAtCompany"},
		Paths:    []string{"currentPosition.tenureAtCompany"},
	}
	CompanyDescription = DestinationField{
		Name: "companyDescription", Column: "company_description", Header: "Company Description",
		Variants: []string{"companyDescription", "company_description", "Company Description", "about_company", "aboutCompany", "company summary"},
		Paths:    []string{"currentPosition.description", "company.description"},
	}
)

// Schema lists the destination fields in grid header order.
var Schema = []DestinationField{
	FirstName,
	LastName,
	Email,
	AIPersonalizedEmail,
	CurrentPosition,
	Location,
	ProfileSummary,
	Specialities,
	LinkedinURL,
	CompanyName,
	Industry,
	TenureAtPosition,
	TenureAtCompany,
	CompanyDescription,
}

// Headers returns the grid headers in display order.
func Headers() []string {
	headers := make([]string, len(Schema))
	for i, f := range Schema {
		headers[i] = f.Header
	}
	return headers
}

// FieldByHeader finds the destination field shown under header.
func FieldByHeader(header string) (DestinationField, bool) {
	for _, f := range Schema {
		if f.Header == header {
			return f, true
		}
	}
	return DestinationField{}, false
}
