package cashback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/metrics"
	"github.com/angelmondragon/atacado-backend/pkg/money"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/outbox/payloads"
)

// ReferenceTypeOrder marks entries whose reference id is an order.
const ReferenceTypeOrder = "order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PostInput describes one ledger entry.
type PostInput struct {
	OrganizationID uuid.UUID
	Amount         decimal.Decimal
	OrderID        *uuid.UUID
	ReferenceID    *uuid.UUID
	ReferenceType  string
	Description    string
	Actor          *outbox.ActorRef
}

// Posting is the entry written and the wallet state after it.
type Posting struct {
	Wallet      models.CashbackWallet
	Transaction models.CashbackTransaction
}

// Reconciliation compares the cached wallet projection with the ledger.
type Reconciliation struct {
	WalletID        uuid.UUID
	OrganizationID  uuid.UUID
	LedgerEarned    decimal.Decimal
	LedgerUsed      decimal.Decimal
	LedgerAvailable decimal.Decimal
	CachedAvailable decimal.Decimal
	Drift           decimal.Decimal
}

// Drifted reports whether the cached projection disagrees with the ledger.
func (r Reconciliation) Drifted() bool {
	return !r.Drift.IsZero()
}

// Service owns every mutation of cashback wallets.
type Service interface {
	PostEarn(ctx context.Context, tx *gorm.DB, input PostInput) (*Posting, error)
	PostUse(ctx context.Context, tx *gorm.DB, input PostInput) (*Posting, error)
	LockedBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (decimal.Decimal, error)
	Wallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error)
	Transactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CashbackTransaction, error)
	Reconcile(ctx context.Context, walletID uuid.UUID) (*Reconciliation, error)
	WalletIDs(ctx context.Context) ([]uuid.UUID, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.EngineMetrics
	money   money.Policy
	logg    *logger.Logger
}

// NewService wires the cashback ledger. metrics may be nil.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, engineMetrics *metrics.EngineMetrics, policy money.Policy, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cashback repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		metrics: engineMetrics,
		money:   policy,
		logg:    logg,
	}, nil
}

// PostEarn credits the organization's wallet, creating it on first use. With
// a nil tx the post runs in its own transaction.
func (s *service) PostEarn(ctx context.Context, tx *gorm.DB, input PostInput) (*Posting, error) {
	return s.post(ctx, tx, enums.CashbackTransactionEarned, input)
}

// PostUse debits the wallet. It fails with INSUFFICIENT_BALANCE and writes
// nothing when the amount exceeds the available balance.
func (s *service) PostUse(ctx context.Context, tx *gorm.DB, input PostInput) (*Posting, error) {
	return s.post(ctx, tx, enums.CashbackTransactionUsed, input)
}

func (s *service) post(ctx context.Context, tx *gorm.DB, entryType enums.CashbackTransactionType, input PostInput) (*Posting, error) {
	if err := s.validate(input); err != nil {
		s.metrics.ObserveLedgerPost(entryType.String(), metrics.ResultRejected, input.Amount)
		return nil, err
	}

	var posting *Posting
	run := func(tx *gorm.DB) error {
		var err error
		posting, err = s.apply(ctx, tx, entryType, input)
		return err
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.tx.WithTx(ctx, run)
	}
	if err != nil {
		result := metrics.ResultError
		if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal && typed.Code() != pkgerrors.CodeDependency {
			result = metrics.ResultRejected
		}
		s.metrics.ObserveLedgerPost(entryType.String(), result, input.Amount)
		return nil, err
	}

	s.metrics.ObserveLedgerPost(entryType.String(), metrics.ResultOK, input.Amount)
	logCtx := s.logg.WithOrgID(ctx, input.OrganizationID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"wallet_id":         posting.Wallet.ID.String(),
		"transaction_id":    posting.Transaction.ID.String(),
		"type":              entryType.String(),
		"amount":            input.Amount.StringFixed(s.money.Places),
		"available_balance": posting.Wallet.AvailableBalance.StringFixed(s.money.Places),
	})
	if input.OrderID != nil {
		logCtx = s.logg.WithOrderID(logCtx, input.OrderID.String())
	}
	s.logg.Info(logCtx, "cashback.posted")
	return posting, nil
}

func (s *service) validate(input PostInput) error {
	if input.OrganizationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]any{"field": "amount", "value": input.Amount.String()})
	}
	if !input.Amount.Equal(s.money.Round(input.Amount)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount has more decimal places than the currency allows").
			WithDetails(map[string]any{"field": "amount", "value": input.Amount.String()})
	}
	return nil
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, entryType enums.CashbackTransactionType, input PostInput) (*Posting, error) {
	repo := s.repo.WithTx(tx)

	if err := repo.EnsureWallet(ctx, input.OrganizationID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure cashback wallet")
	}
	wallet, err := repo.LockWallet(ctx, input.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cashback wallet")
	}

	switch entryType {
	case enums.CashbackTransactionEarned:
		wallet.TotalEarned = wallet.TotalEarned.Add(input.Amount)
		wallet.AvailableBalance = wallet.AvailableBalance.Add(input.Amount)
	case enums.CashbackTransactionUsed:
		if input.Amount.GreaterThan(wallet.AvailableBalance) {
			logCtx := s.logg.WithOrgID(ctx, input.OrganizationID.String())
			logCtx = s.logg.WithFields(logCtx, map[string]any{
				"wallet_id": wallet.ID.String(),
				"requested": input.Amount.StringFixed(s.money.Places),
				"available": wallet.AvailableBalance.StringFixed(s.money.Places),
			})
			s.logg.Warn(logCtx, "cashback.insufficient_balance")
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient wallet balance")
		}
		wallet.TotalUsed = wallet.TotalUsed.Add(input.Amount)
		wallet.AvailableBalance = wallet.AvailableBalance.Sub(input.Amount)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unsupported ledger entry type %q", entryType))
	}

	entry := models.CashbackTransaction{
		WalletID:    wallet.ID,
		OrderID:     input.OrderID,
		Type:        entryType,
		Amount:      input.Amount,
		ReferenceID: input.ReferenceID,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if input.ReferenceType != "" {
		refType := input.ReferenceType
		entry.ReferenceType = &refType
	}
	if err := repo.CreateTransaction(ctx, &entry); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cashback already posted for order").
				WithDetails(map[string]any{"type": entryType.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cashback transaction")
	}

	if err := repo.UpdateWallet(ctx, wallet, wallet.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cashback wallet changed concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cashback wallet")
	}

	eventType := enums.EventCashbackEarned
	if entryType == enums.CashbackTransactionUsed {
		eventType = enums.EventCashbackUsed
	}
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateCashbackWallet,
		AggregateID:   wallet.ID,
		Actor:         input.Actor,
		Data: payloads.CashbackPostedEvent{
			WalletID:         wallet.ID,
			OrganizationID:   wallet.OrganizationID,
			TransactionID:    entry.ID,
			OrderID:          entry.OrderID,
			Type:             entryType,
			Amount:           entry.Amount,
			AvailableBalance: wallet.AvailableBalance,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit cashback event")
	}

	return &Posting{Wallet: *wallet, Transaction: entry}, nil
}

// LockedBalance returns the available balance under the wallet row lock held by
// tx, or zero when the organization has no wallet yet.
func (s *service) LockedBalance(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, fmt.Errorf("transaction required")
	}
	wallet, err := s.repo.WithTx(tx).LockWallet(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cashback wallet")
	}
	return wallet.AvailableBalance, nil
}

// Wallet returns the organization's wallet, or an unsaved zero projection when
// it has never earned cashback.
func (s *service) Wallet(ctx context.Context, orgID uuid.UUID) (*models.CashbackWallet, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	wallet, err := s.repo.FindWallet(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.CashbackWallet{
				OrganizationID:   orgID,
				AvailableBalance: decimal.Zero,
				TotalEarned:      decimal.Zero,
				TotalUsed:        decimal.Zero,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cashback wallet")
	}
	return wallet, nil
}

func (s *service) Transactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CashbackTransaction, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	wallet, err := s.repo.FindWallet(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.CashbackTransaction{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cashback wallet")
	}
	entries, err := s.repo.ListTransactions(ctx, wallet.ID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cashback transactions")
	}
	return entries, nil
}

// Reconcile recomputes the balance from the ledger. Drift is cached minus
// ledger; the ledger wins. Both reads share one transaction under a share
// lock on the wallet, so a concurrent post cannot land between them.
func (s *service) Reconcile(ctx context.Context, walletID uuid.UUID) (*Reconciliation, error) {
	var (
		wallet *models.CashbackWallet
		sums   map[enums.CashbackTransactionType]decimal.Decimal
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		wallet, err = repo.ShareLockWallet(ctx, walletID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cashback wallet not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cashback wallet")
		}
		sums, err = repo.SumByType(ctx, walletID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cashback transactions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	earned := sums[enums.CashbackTransactionEarned]
	used := sums[enums.CashbackTransactionUsed]
	rec := &Reconciliation{
		WalletID:        wallet.ID,
		OrganizationID:  wallet.OrganizationID,
		LedgerEarned:    earned,
		LedgerUsed:      used,
		LedgerAvailable: earned.Sub(used),
		CachedAvailable: wallet.AvailableBalance,
	}
	rec.Drift = rec.CachedAvailable.Sub(rec.LedgerAvailable)
	if rec.Drifted() {
		s.metrics.IncWalletDrift()
		logCtx := s.logg.WithOrgID(ctx, wallet.OrganizationID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"wallet_id":        wallet.ID.String(),
			"ledger_available": rec.LedgerAvailable.StringFixed(s.money.Places),
			"cached_available": rec.CachedAvailable.StringFixed(s.money.Places),
			"drift":            rec.Drift.StringFixed(s.money.Places),
		})
		s.logg.Warn(logCtx, "cashback.wallet_drift")
	}
	return rec, nil
}

func (s *service) WalletIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.ListWalletIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cashback wallets")
	}
	return ids, nil
}
