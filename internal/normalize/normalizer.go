package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	startYearPaths  = []string{"startedOn.year", "startDate.year", "started.year"}
	startMonthPaths = []string{"startedOn.month", "startDate.month", "started.month"}
)

// NormalizedRow is one record mapped onto the fixed lead schema.
// Email and AIPersonalizedEmail are nil when the source had nothing for them.
type NormalizedRow struct {
	TableConfigID       string
	FirstName           string
	LastName            string
	Email               *string
	AIPersonalizedEmail *string
	CurrentPosition     string
	Location            string
	ProfileSummary      string
	Specialities        string
	LinkedinURL         string
	CompanyName         string
	Industry            string
	TenureAtPosition    string
	TenureAtCompany     string
	CompanyDescription  string
}

// Normalize maps a raw record onto the lead schema. It has no side effects.
func Normalize(record Record, tableConfigID string) NormalizedRow {
	row := NormalizedRow{
		TableConfigID:      tableConfigID,
		FirstName:          FirstName.Resolve(record),
		LastName:           LastName.Resolve(record),
		CurrentPosition:    CurrentPosition.Resolve(record),
		Location:           Location.Resolve(record),
		ProfileSummary:     ProfileSummary.Resolve(record),
		Specialities:       Specialities.Resolve(record),
		LinkedinURL:        LinkedinURL.Resolve(record),
		CompanyName:        CompanyName.Resolve(record),
		Industry:           Industry.Resolve(record),
		CompanyDescription: CompanyDescription.Resolve(record),
	}

	if email := Email.Resolve(record); email != "" {
		row.Email = &email
	}
	if aiEmail := AIPersonalizedEmail.Resolve(record); aiEmail != "" {
		row.AIPersonalizedEmail = &aiEmail
	}

	row.TenureAtPosition = firstNonEmpty(
		tenureDuration(record, "currentPosition.tenureAtPosition"),
		StartedOn(record),
		TenureAtPosition.Resolve(record),
	)
	row.TenureAtCompany = firstNonEmpty(
		tenureDuration(record, "currentPosition.tenureAtCompany"),
		TenureAtCompany.Resolve(record),
	)

	return row
}

// Values returns the row's cells keyed by grid header.
func (r NormalizedRow) Values() map[string]string {
	return map[string]string{
		FirstName.Header:           r.FirstName,
		LastName.Header:            r.LastName,
		Email.Header:               deref(r.Email),
		AIPersonalizedEmail.Header: deref(r.AIPersonalizedEmail),
		CurrentPosition.Header:     r.CurrentPosition,
		Location.Header:            r.Location,
		ProfileSummary.Header:      r.ProfileSummary,
		Specialities.Header:        r.Specialities,
		LinkedinURL.Header:         r.LinkedinURL,
		CompanyName.Header:         r.CompanyName,
		Industry.Header:            r.Industry,
		TenureAtPosition.Header:    r.TenureAtPosition,
		TenureAtCompany.Header:     r.TenureAtCompany,
		CompanyDescription.Header:  r.CompanyDescription,
	}
}

func tenureDuration(record Record, base string) string {
	years, _ := LookupPath(record, base+".numYears")
	months, _ := LookupPath(record, base+".numMonths")
	return FormatDuration(Coerce(years), Coerce(months))
}

// FormatDuration renders a tenure such as "2y 3m". Parts that are missing, not a
// number, or not positive are left out.
func FormatDuration(years, months string) string {
	var parts []string
	if y, ok := parseLeadingInt(years); ok && y > 0 {
		parts = append(parts, strconv.Itoa(y)+"y")
	}
	if m, ok := parseLeadingInt(months); ok && m > 0 {
		parts = append(parts, strconv.Itoa(m)+"m")
	}
	return strings.Join(parts, " ")
}

// StartedOn renders the start date of the current position as "Mar 2021", or just the
// year when no month is known.
func StartedOn(record Record) string {
	year := Resolve(record, nil, startYearPaths)
	if year == "" {
		return ""
	}
	month := Resolve(record, nil, startMonthPaths)
	if month == "" {
		return year
	}
	return MonthAbbrev(month) + " " + year
}

// MonthAbbrev maps "1".."12" to "Jan".."Dec". Anything else is returned as given.
func MonthAbbrev(month string) string {
	m, ok := parseLeadingInt(month)
	if !ok {
		return strings.TrimSpace(month)
	}
	if m >= 1 && m <= 12 {
		return monthNames[m-1]
	}
	return strconv.Itoa(m)
}

// parseLeadingInt reads an optionally signed integer prefix, ignoring leading
// whitespace and anything after the digits ("2.5" -> 2, " 7 years" -> 7).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
