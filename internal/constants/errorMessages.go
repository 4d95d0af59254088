package constants

// Validation messages returned with HTTP 400.
const (
	MsgTableNameRequired   = "Table name is required"
	MsgDataNotArray        = "Data must be an array of JSON objects"
	MsgDataEmpty           = "Data array cannot be empty"
	MsgTooManyRecords      = "Maximum 2500 records allowed per import"
	MsgActionAmountMissing = "action and amount required"
	MsgInvalidAction       = "Invalid action"
	MsgNegativeAmount      = "amount must not be negative"
	MsgMissingRecordField  = "Missing recordId/field"
	MsgUnsupportedField    = "Unsupported field"
	MsgRecordIDsRequired   = "recordIds required"
	MsgRowIDsRequired      = "rowIds required"
	MsgTableIDRequired     = "id required"
	MsgEmailFieldsRequired = "Missing required fields: rowId, tableId, and email are required"
	MsgAIEmailRequired     = "Missing required fields: rowId, tableId, and aiEmail are required"
	MsgSalesNavRequired    = "searchName and salesNavUrl are required"
	MsgScraperRequired     = "searchName, searchUrl and liAt are required"
	MsgSpreadsheetRequired = "Spreadsheet URL is required"
	MsgInvalidSheetsURL    = "Invalid Google Sheets URL"
	MsgInvalidBody         = "Invalid request body"
	MsgCallbackValue       = "value is required"
	MsgUnknownCallback     = "Unknown callback kind"
)

// Not found and payment messages.
const (
	MsgTableNotFound       = "Table not found"
	MsgRowNotFound         = "Row not found or does not belong to the specified table"
	MsgInsufficientCredits = "Insufficient credits"
)

// Messages for failures surfaced with HTTP 5xx or 403.
const (
	MsgFetchCreditsFailed   = "Failed to fetch credits"
	MsgUpdateCreditsFailed  = "Failed to update credits"
	MsgImportFailed         = "Failed to create table and records"
	MsgFetchTablesFailed    = "Failed to fetch tables"
	MsgFetchRowsFailed      = "Failed to fetch table rows"
	MsgUpdateRecordFailed   = "Failed to update record"
	MsgDeleteRecordsFailed  = "Failed to delete records"
	MsgDeleteTableFailed    = "Failed to delete table"
	MsgUpdateEmailFailed    = "Failed to update email"
	MsgUpdateAIEmailFailed  = "Failed to update AI email"
	MsgEnrichmentFailed     = "Failed to start enrichment"
	MsgSubmitFailed         = "Failed to submit request"
	MsgScrapingFailed       = "Scraping failed"
	MsgScraperServerError   = "Server error"
	MsgSpreadsheetFailed    = "Failed to import spreadsheet"
	MsgSheetsNotConfigured  = "Google Sheets API credentials not configured"
	MsgSheetsAccessDenied   = "Access denied. Make sure the spreadsheet is public or you have proper permissions"
	MsgCallbackRejected     = "Invalid or expired callback token"
	MsgWebhookNotConfigured = "Webhook URL not configured"
)
