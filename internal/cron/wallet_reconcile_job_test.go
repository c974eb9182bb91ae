package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/atacado-backend/internal/cashback"
)

func TestWalletReconcileJobChecksEveryWallet(t *testing.T) {
	healthy, drifted, broken := uuid.New(), uuid.New(), uuid.New()
	fake := &fakeReconciler{
		ids: []uuid.UUID{healthy, drifted, broken},
		results: map[uuid.UUID]*cashback.Reconciliation{
			healthy: {WalletID: healthy},
			drifted: {WalletID: drifted, Drift: decimal.RequireFromString("5.50")},
		},
		errs: map[uuid.UUID]error{broken: errors.New("db gone")},
	}
	job, err := NewWalletReconcileJob(WalletReconcileJobParams{Logger: testLogger(), Cashback: fake})
	if err != nil {
		t.Fatalf("NewWalletReconcileJob: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatalf("expected failing wallet to surface")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("expected one wallet error, got %d", got)
	}
	if len(fake.reconciled) != 3 {
		t.Fatalf("expected every wallet reconciled, got %d", len(fake.reconciled))
	}
}

func TestWalletReconcileJobListFailure(t *testing.T) {
	fake := &fakeReconciler{listErr: errors.New("timeout")}
	job, err := NewWalletReconcileJob(WalletReconcileJobParams{Logger: testLogger(), Cashback: fake})
	if err != nil {
		t.Fatalf("NewWalletReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
	if len(fake.reconciled) != 0 {
		t.Fatalf("nothing should be reconciled when listing fails")
	}
}

type fakeReconciler struct {
	ids        []uuid.UUID
	listErr    error
	results    map[uuid.UUID]*cashback.Reconciliation
	errs       map[uuid.UUID]error
	reconciled []uuid.UUID
}

func (f *fakeReconciler) WalletIDs(context.Context) ([]uuid.UUID, error) {
	return f.ids, f.listErr
}

func (f *fakeReconciler) Reconcile(_ context.Context, walletID uuid.UUID) (*cashback.Reconciliation, error) {
	f.reconciled = append(f.reconciled, walletID)
	if err := f.errs[walletID]; err != nil {
		return nil, err
	}
	return f.results[walletID], nil
}
