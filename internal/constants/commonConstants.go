package constants

type (
	CachePrefix  string
	CreditReason string
	CallbackKind string
)

const (
	CachePrefixTableList CachePrefix = "TABLES_LIST"
	CachePrefixUsedToken CachePrefix = "used_token:"
)

const (
	CreditReasonImport          CreditReason = "import"
	CreditReasonEmailExtraction CreditReason = "email_extraction"
	CreditReasonAIEmail         CreditReason = "ai_email"
	CreditReasonManual          CreditReason = "manual"
)

const (
	CallbackKindEmail   CallbackKind = "email"
	CallbackKindAIEmail CallbackKind = "ai-email"
)

// Credit policy.
const (
	StartingBalance     int64 = 250
	CostEmailExtraction int64 = 2
	CostAIEmail         int64 = 1
	CostPerImportedRow  int64 = 1

	MaxImportRecords = 2500
	ImportBatchSize  = 500

	// CreditsAccountID is the id of the single ledger row.
	CreditsAccountID = "default"
)

// Apify run states that end polling.
const (
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
	RunStatusTimedOut  = "TIMED-OUT"
	RunStatusAborted   = "ABORTED"
)
