package services

import (
	"context"
	"fmt"

	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
)

// CreditService manages the single credit balance shared by every paid operation
type CreditService struct {
	repo    *repositories.CreditsRepo
	metrics *metrics.MetricsRegistry
}

// NewCreditService creates a new credit service
func NewCreditService(repo *repositories.CreditsRepo, metricsReg *metrics.MetricsRegistry) *CreditService {
	return &CreditService{
		repo:    repo,
		metrics: metricsReg,
	}
}

// GetOrCreate returns the current balance, creating the account with the starting
// balance on first use.
func (svc *CreditService) GetOrCreate(ctx context.Context) (int64, error) {
	if err := svc.repo.Ensure(ctx, constants.CreditsAccountID, constants.StartingBalance); err != nil {
		return 0, fmt.Errorf("ensure credits account: %w", err)
	}

	credit, err := svc.repo.Get(ctx, constants.CreditsAccountID)
	if err != nil {
		return 0, fmt.Errorf("get credits: %w", err)
	}
	if credit == nil {
		return 0, fmt.Errorf("credits account %s missing after create", constants.CreditsAccountID)
	}

	svc.observe(credit.Balance)
	return credit.Balance, nil
}

// Topup adds amount unconditionally and returns the new balance. A negative amount
// lowers the balance.
func (svc *CreditService) Topup(ctx context.Context, amount int64) (int64, error) {
	if _, err := svc.GetOrCreate(ctx); err != nil {
		return 0, err
	}

	balance, err := svc.repo.Add(ctx, constants.CreditsAccountID, amount)
	if err != nil {
		return 0, fmt.Errorf("add credits: %w", err)
	}

	svc.observe(balance)
	if svc.metrics != nil && amount > 0 {
		svc.metrics.CreditsToppedUpTotal.Add(float64(amount))
	}
	logging.Info("Credits topped up", "amount", amount, "balance", balance)
	return balance, nil
}

// Deduct subtracts amount and returns the new balance. Nothing changes and
// ErrInsufficientCredits is returned when the balance is lower than amount.
// Negative amounts are rejected; use Topup to add credits.
func (svc *CreditService) Deduct(ctx context.Context, amount int64, reason constants.CreditReason) (int64, error) {
	if amount < 0 {
		return 0, invalid(constants.MsgNegativeAmount)
	}
	if _, err := svc.GetOrCreate(ctx); err != nil {
		return 0, err
	}

	balance, ok, err := svc.repo.SubtractIfAvailable(ctx, constants.CreditsAccountID, amount)
	if err != nil {
		return 0, fmt.Errorf("deduct credits: %w", err)
	}
	if !ok {
		if svc.metrics != nil {
			svc.metrics.InsufficientFundsTotal.WithLabelValues(string(reason)).Inc()
		}
		return 0, ErrInsufficientCredits
	}

	svc.observe(balance)
	svc.countDeducted(reason, amount)
	return balance, nil
}

// BulkDeduct subtracts count credits, stopping at zero. It is charged after work that
// has already happened, so callers ignore the error; it is only logged here.
func (svc *CreditService) BulkDeduct(ctx context.Context, count int64, reason constants.CreditReason) error {
	if count <= 0 {
		return nil
	}
	if _, err := svc.GetOrCreate(ctx); err != nil {
		logging.Error("Bulk credit deduction failed", "count", count, "reason", reason, "error", err)
		return err
	}

	balance, err := svc.repo.SubtractClamped(ctx, constants.CreditsAccountID, count)
	if err != nil {
		logging.Error("Bulk credit deduction failed", "count", count, "reason", reason, "error", err)
		return fmt.Errorf("bulk deduct credits: %w", err)
	}

	svc.observe(balance)
	svc.countDeducted(reason, count)
	return nil
}

// ChargeBestEffort deducts amount after the paid write already succeeded. Failures,
// insufficient funds included, are logged and returned for callers to ignore.
func (svc *CreditService) ChargeBestEffort(ctx context.Context, amount int64, reason constants.CreditReason) error {
	if _, err := svc.Deduct(ctx, amount, reason); err != nil {
		logging.Warn("Credit charge skipped", "amount", amount, "reason", reason, "error", err)
		return err
	}
	return nil
}

// EnsureAvailable fails with ErrInsufficientCredits when the balance is below amount
func (svc *CreditService) EnsureAvailable(ctx context.Context, amount int64) error {
	balance, err := svc.GetOrCreate(ctx)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientCredits
	}
	return nil
}

func (svc *CreditService) observe(balance int64) {
	if svc.metrics != nil {
		svc.metrics.CreditsBalance.Set(float64(balance))
	}
}

func (svc *CreditService) countDeducted(reason constants.CreditReason, amount int64) {
	if svc.metrics != nil {
		svc.metrics.CreditsDeductedTotal.WithLabelValues(string(reason)).Add(float64(amount))
	}
}
