package constants

// Credit ledger statements. Placeholders are written with ? and rebound per driver.
const (
	EnsureCreditsAccount = `
	INSERT INTO credits (id, balance, created_at, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT (id) DO NOTHING
	`

	GetCreditsAccount = `
	SELECT id, balance FROM credits WHERE id = ?
	`

	AddCredits = `
	UPDATE credits SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?
	RETURNING balance
	`

	SubtractCreditsIfAvailable = `
	UPDATE credits SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND balance >= ?
	RETURNING balance
	`

	SubtractCreditsClamped = `
	UPDATE credits
	SET balance = CASE WHEN balance > ? THEN balance - ? ELSE 0 END, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?
	RETURNING balance
	`
)
