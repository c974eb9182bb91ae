package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

type WalletReconcileJobParams struct {
	Logger   *logger.Logger
	Cashback walletReconciler
}

type walletReconciler interface {
	WalletIDs(ctx context.Context) ([]uuid.UUID, error)
	Reconcile(ctx context.Context, walletID uuid.UUID) (*cashback.Reconciliation, error)
}

// NewWalletReconcileJob compares every cached wallet balance with its ledger.
// The cashback service logs and counts each drifted wallet; the job reports totals.
func NewWalletReconcileJob(params WalletReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cashback == nil {
		return nil, fmt.Errorf("cashback service required")
	}
	return &walletReconcileJob{
		logg:     params.Logger,
		cashback: params.Cashback,
	}, nil
}

type walletReconcileJob struct {
	logg     *logger.Logger
	cashback walletReconciler
}

func (j *walletReconcileJob) Name() string { return "wallet-reconcile" }

func (j *walletReconcileJob) Run(ctx context.Context) error {
	ids, err := j.cashback.WalletIDs(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	var (
		errs    error
		drifted int
	)
	for _, id := range ids {
		rec, err := j.cashback.Reconcile(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile wallet %s: %w", id, err))
			continue
		}
		if rec.Drifted() {
			drifted++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"wallets_checked": len(ids),
		"wallets_drifted": drifted,
		"wallets_failed":  len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "wallet reconciliation complete")
	return errs
}
