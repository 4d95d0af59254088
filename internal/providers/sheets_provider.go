package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
)

var spreadsheetIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9-_]+)`),
}

// ExtractSpreadsheetID pulls the document id out of the usual Google Sheets URL shapes
func ExtractSpreadsheetID(rawURL string) (string, bool) {
	for _, pattern := range spreadsheetIDPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// SheetsProvider reads public spreadsheets through the Sheets REST API with an API key
type SheetsProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Spreadsheet is the metadata needed to read every sheet of a document
type Spreadsheet struct {
	Title  string
	Sheets []string
}

type spreadsheetResponse struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valueRangeResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// NewSheetsProvider creates a new Google Sheets provider
func NewSheetsProvider(cfg config.SheetsConfig) *SheetsProvider {
	return &SheetsProvider{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		Client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (p *SheetsProvider) rest() *restClient {
	return &restClient{service: "google sheets", client: p.Client}
}

func (p *SheetsProvider) checkConfig() error {
	if p.APIKey == "" {
		return &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "GOOGLE_SHEETS_API_KEY is not set",
		}
	}
	return nil
}

// GetSpreadsheet fetches the document title and its sheet names
func (p *SheetsProvider) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, int, error) {
	if err := p.checkConfig(); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("/spreadsheets/%s", url.PathEscape(spreadsheetID))
	query := url.Values{}
	query.Set("key", p.APIKey)
	query.Set("fields", "properties.title,sheets.properties.title")

	var result spreadsheetResponse
	status, err := p.rest().doGET(ctx, endpoint, p.BaseURL+endpoint+"?"+query.Encode(), &result)
	if err != nil {
		return nil, status, err
	}

	sheet := &Spreadsheet{Title: result.Properties.Title}
	if sheet.Title == "" {
		sheet.Title = "Untitled Spreadsheet"
	}
	for _, s := range result.Sheets {
		sheet.Sheets = append(sheet.Sheets, s.Properties.Title)
	}

	return sheet, status, nil
}

// GetValues reads a range in A1 notation as formatted strings
func (p *SheetsProvider) GetValues(ctx context.Context, spreadsheetID, a1Range string) ([][]string, int, error) {
	if err := p.checkConfig(); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("/spreadsheets/%s/values/%s", url.PathEscape(spreadsheetID), url.PathEscape(a1Range))
	query := url.Values{}
	query.Set("key", p.APIKey)
	query.Set("valueRenderOption", "FORMATTED_VALUE")

	var result valueRangeResponse
	status, err := p.rest().doGET(ctx, endpoint, p.BaseURL+endpoint+"?"+query.Encode(), &result)
	if err != nil {
		return nil, status, err
	}

	return result.Values, status, nil
}
