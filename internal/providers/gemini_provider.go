package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"

	"google.golang.org/genai"
)

const defaultEmailInstructions = "Write a short, friendly cold outreach email to this lead. " +
	"Reference their role and company. Return only the email body."

// LeadProfile is what the generator is told about a lead
type LeadProfile struct {
	FirstName          string
	LastName           string
	CurrentPosition    string
	CompanyName        string
	Industry           string
	Location           string
	ProfileSummary     string
	CompanyDescription string
}

// GeminiEmailGenerator writes personalized emails with the Gemini API
type GeminiEmailGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiEmailGenerator creates a generator. It fails when no API key is configured.
func NewGeminiEmailGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiEmailGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	return &GeminiEmailGenerator{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
	}, nil
}

// GenerateEmail asks the model for an email to lead, following the table's prompt
func (g *GeminiEmailGenerator) GenerateEmail(ctx context.Context, instructions string, lead LeadProfile) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(BuildEmailPrompt(instructions, lead)),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
		},
	)
	if err != nil {
		return "", classifyGeminiErr(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "gemini: empty response",
		}
	}
	return text, nil
}

// BuildEmailPrompt renders the prompt sent to the model
func BuildEmailPrompt(instructions string, lead LeadProfile) string {
	if strings.TrimSpace(instructions) == "" {
		instructions = defaultEmailInstructions
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\nLead:\n")

	fields := []struct{ label, value string }{
		{"First name", lead.FirstName},
		{"Last name", lead.LastName},
		{"Position", lead.CurrentPosition},
		{"Company", lead.CompanyName},
		{"Industry", lead.Industry},
		{"Location", lead.Location},
		{"Profile summary", lead.ProfileSummary},
		{"Company description", lead.CompanyDescription},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(f.label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(f.value))
		b.WriteString("\n")
	}

	return b.String()
}

func classifyGeminiErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code := constants.ErrCodeUpstreamFailure
		switch {
		case apiErr.Code == 429:
			code = constants.ErrCodeRateLimited
		case apiErr.Code == 401 || apiErr.Code == 403:
			code = constants.ErrCodeInvalidAPIKey
		}
		return &ProviderError{
			Code:       code,
			Message:    "gemini: generate content failed",
			StatusCode: apiErr.Code,
			Err:        err,
		}
	}
	return &ProviderError{
		Code:    constants.ErrCodeNetworkError,
		Message: "gemini: generate content failed",
		Err:     err,
	}
}
