package repositories

import (
	"context"
	"database/sql"
	"errors"

	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// CreditsRepo reads and updates the credit ledger with plain SQL. Every mutation is a
// single statement so concurrent requests cannot interleave a read and a write.
type CreditsRepo struct {
	db *sqlx.DB
}

func NewCreditsRepo(db *sqlx.DB) *CreditsRepo {
	return &CreditsRepo{db}
}

// Ensure inserts the account with the given balance unless it already exists.
func (r *CreditsRepo) Ensure(ctx context.Context, id string, balance int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(constants.EnsureCreditsAccount), id, balance)
	return err
}

// Get returns the account, or nil when it does not exist.
func (r *CreditsRepo) Get(ctx context.Context, id string) (*entities.Credit, error) {
	var credit entities.Credit

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(constants.GetCreditsAccount), id).StructScan(&credit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &credit, nil
}

// Add increases the balance and returns the new value.
func (r *CreditsRepo) Add(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(constants.AddCredits), amount, id).Scan(&balance)
	return balance, err
}

// SubtractIfAvailable decreases the balance only when it covers amount. ok is false, with
// nothing changed, when it does not.
func (r *CreditsRepo) SubtractIfAvailable(ctx context.Context, id string, amount int64) (balance int64, ok bool, err error) {
	err = r.db.QueryRowxContext(ctx, r.db.Rebind(constants.SubtractCreditsIfAvailable), amount, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return balance, true, nil
}

// SubtractClamped decreases the balance, stopping at zero.
func (r *CreditsRepo) SubtractClamped(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(constants.SubtractCreditsClamped), amount, amount, id).Scan(&balance)
	return balance, err
}
