package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

// AccountLocker serializes work on one account. fn runs while the lock is
// held and its error is returned unchanged.
type AccountLocker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// TransferService drives the prepare, commit and release phases of scheme
// transfers. Each phase reads, decides and posts against a single account
// under that account's lock.
type TransferService struct {
	ledgerRepo  domain.LedgerRepository
	noteRepo    domain.NoteRepository
	validator   *TransferValidator
	locker      AccountLocker
	routingCode string
	now         func() time.Time
}

func NewTransferService(
	ledgerRepo domain.LedgerRepository,
	noteRepo domain.NoteRepository,
	validator *TransferValidator,
	locker AccountLocker,
	routingCode string,
) *TransferService {
	return &TransferService{
		ledgerRepo:  ledgerRepo,
		noteRepo:    noteRepo,
		validator:   validator,
		locker:      locker,
		routingCode: strings.TrimSpace(routingCode),
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// PrepareTransfer reserves the total of a debit transfer. Credit transfers
// are accepted without touching the ledger.
func (s *TransferService) PrepareTransfer(ctx context.Context, caller domain.Caller, req domain.TransferRequest) (domain.TransferResult, error) {
	logger.Info("transfer service prepare request", logger.Fields{
		"payload": logger.SanitizePayload(req),
		"actorId": caller.ActorID,
		"tenant":  caller.Tenant,
	})

	validated, err := s.validator.Validate(ctx, req)
	if err != nil {
		return domain.TransferResult{}, classify(err)
	}
	if validated.Direction == domain.DirectionCredit {
		return s.result(validated.Request, validated.Account, domain.TransferStateNone, s.now()), nil
	}

	req = validated.Request
	tag := s.tag(req.TransferCode)
	total := domain.TotalTransferAmount(req.Amount.Amount, req.FspFee, req.FspCommission)

	var (
		account domain.Account
		hold    domain.Transaction
	)
	err = s.withAccount(ctx, validated.Account, func(ctx context.Context, current domain.Account) error {
		account = current
		if current.WithdrawableBalance().LessThan(total) {
			return fmt.Errorf("%w: withdrawable %s, required %s", domain.ErrInsufficientFunds, current.WithdrawableBalance(), total)
		}

		exists, err := s.hasTransaction(ctx, current.ID, domain.TransactionTypeHold, tag)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: hold for transfer %s already exists", domain.ErrDuplicateTransfer, req.TransferCode)
		}

		posting := domain.NewPosting(current, caller.ActorID, s.now())
		hold, err = posting.Hold(total, tag)
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.ApplyPosting(ctx, *posting); err != nil {
			return err
		}
		account = posting.Account
		return nil
	})
	if err != nil {
		s.logRejected("prepare", req.TransferCode, err)
		return domain.TransferResult{}, classify(err)
	}

	logger.Info("transfer service prepare accepted", logger.Fields{
		"transferCode":        req.TransferCode,
		"accountId":           account.ExternalID,
		"holdId":              hold.ID,
		"total":               total.String(),
		"withdrawableBalance": account.WithdrawableBalance().String(),
	})
	return s.result(req, account, domain.TransferStateHeld, hold.CreatedAt), nil
}

// CommitTransfer realizes a prepared debit or books a credit. Replaying an
// identical commit returns the recorded result without a second movement.
func (s *TransferService) CommitTransfer(ctx context.Context, caller domain.Caller, req domain.TransferRequest) (domain.TransferResult, error) {
	logger.Info("transfer service commit request", logger.Fields{
		"payload": logger.SanitizePayload(req),
		"actorId": caller.ActorID,
		"tenant":  caller.Tenant,
	})

	validated, err := s.validator.Validate(ctx, req)
	if err != nil {
		return domain.TransferResult{}, classify(err)
	}
	req = validated.Request

	var (
		account   domain.Account
		committed domain.Transaction
		replayed  bool
	)
	err = s.withAccount(ctx, validated.Account, func(ctx context.Context, current domain.Account) error {
		var err error
		account = current
		if validated.Direction == domain.DirectionDebit {
			committed, replayed, account, err = s.commitDebit(ctx, caller, current, req)
		} else {
			committed, replayed, account, err = s.commitCredit(ctx, caller, current, req)
		}
		return err
	})
	if err != nil {
		s.logRejected("commit", req.TransferCode, err)
		return domain.TransferResult{}, classify(err)
	}

	if replayed {
		logger.Info("transfer service commit replayed", logger.Fields{
			"transferCode":  req.TransferCode,
			"transactionId": committed.ID,
		})
	} else {
		logger.Info("transfer service commit accepted", logger.Fields{
			"transferCode":        req.TransferCode,
			"accountId":           account.ExternalID,
			"transactionId":       committed.ID,
			"withdrawableBalance": account.WithdrawableBalance().String(),
		})
		s.saveNote(ctx, caller, account, committed, req.Note)
	}

	return s.result(req, account, domain.TransferStateCommitted, committed.CreatedAt), nil
}

func (s *TransferService) commitDebit(ctx context.Context, caller domain.Caller, account domain.Account, req domain.TransferRequest) (domain.Transaction, bool, domain.Account, error) {
	tag := s.tag(req.TransferCode)
	total := domain.TotalTransferAmount(req.Amount.Amount, req.FspFee, req.FspCommission)

	previous, err := s.findTransaction(ctx, account.ID, domain.TransactionTypeWithdrawal, tag)
	if err == nil {
		if !previous.Amount.Equal(req.Amount.Amount) {
			return domain.Transaction{}, false, account, fmt.Errorf("%w: transfer %s already committed for %s", domain.ErrDuplicateTransfer, req.TransferCode, previous.Amount)
		}
		return previous, true, account, nil
	}
	if !errors.Is(err, domain.ErrTransferNotFound) {
		return domain.Transaction{}, false, account, err
	}

	hold, err := s.findTransaction(ctx, account.ID, domain.TransactionTypeHold, tag)
	if errors.Is(err, domain.ErrTransferNotFound) {
		return domain.Transaction{}, false, account, fmt.Errorf("%w: transfer %s", domain.ErrMissingHold, req.TransferCode)
	}
	if err != nil {
		return domain.Transaction{}, false, account, err
	}
	if hold.IsReleased() {
		return domain.Transaction{}, false, account, fmt.Errorf("%w: hold for transfer %s was released", domain.ErrMissingHold, req.TransferCode)
	}
	if !hold.Amount.Equal(total) {
		return domain.Transaction{}, false, account, fmt.Errorf("%w: held %s, requested %s", domain.ErrAmountMismatch, hold.Amount, total)
	}
	if account.WithdrawableBalance().Add(hold.Amount).LessThan(total) {
		return domain.Transaction{}, false, account, fmt.Errorf("%w: transfer %s", domain.ErrInsufficientFunds, req.TransferCode)
	}

	posting := domain.NewPosting(account, caller.ActorID, s.now())
	if _, err := posting.Release(hold); err != nil {
		return domain.Transaction{}, false, account, err
	}

	amount := req.Amount.Amount
	if total.LessThan(amount) {
		if _, err := posting.Deposit(domain.TransactionTypeCommission, amount.Sub(total), tag); err != nil {
			return domain.Transaction{}, false, account, err
		}
	}
	withdrawal, err := posting.Withdraw(domain.TransactionTypeWithdrawal, amount, tag)
	if err != nil {
		return domain.Transaction{}, false, account, err
	}
	if total.GreaterThan(amount) {
		if _, err := posting.Withdraw(domain.TransactionTypeWithdrawalFee, total.Sub(amount), tag); err != nil {
			return domain.Transaction{}, false, account, err
		}
	}

	if err := s.ledgerRepo.ApplyPosting(ctx, *posting); err != nil {
		return domain.Transaction{}, false, account, err
	}
	return withdrawal, false, posting.Account, nil
}

func (s *TransferService) commitCredit(ctx context.Context, caller domain.Caller, account domain.Account, req domain.TransferRequest) (domain.Transaction, bool, domain.Account, error) {
	tag := s.tag(req.TransferCode)

	previous, err := s.findTransaction(ctx, account.ID, domain.TransactionTypeDeposit, tag)
	if err == nil {
		if !previous.Amount.Equal(req.Amount.Amount) {
			return domain.Transaction{}, false, account, fmt.Errorf("%w: transfer %s already deposited %s", domain.ErrDuplicateTransfer, req.TransferCode, previous.Amount)
		}
		return previous, true, account, nil
	}
	if !errors.Is(err, domain.ErrTransferNotFound) {
		return domain.Transaction{}, false, account, err
	}

	posting := domain.NewPosting(account, caller.ActorID, s.now())
	deposit, err := posting.Deposit(domain.TransactionTypeDeposit, req.Amount.Amount, tag)
	if err != nil {
		return domain.Transaction{}, false, account, err
	}
	if err := s.ledgerRepo.ApplyPosting(ctx, *posting); err != nil {
		return domain.Transaction{}, false, account, err
	}
	return deposit, false, posting.Account, nil
}

// ReleaseTransfer cancels the outstanding hold of a prepared debit.
func (s *TransferService) ReleaseTransfer(ctx context.Context, caller domain.Caller, req domain.ReleaseRequest) (domain.TransferResult, error) {
	logger.Info("transfer service release request", logger.Fields{
		"payload": logger.SanitizePayload(req),
		"actorId": caller.ActorID,
		"tenant":  caller.Tenant,
	})

	if strings.TrimSpace(req.TransferCode) == "" {
		return domain.TransferResult{}, fmt.Errorf("%w: transferCode is required", domain.ErrInvalidRequest)
	}
	resolved, err := s.validator.ResolveAccount(ctx, domain.Party{AccountID: req.AccountID})
	if err != nil {
		return domain.TransferResult{}, classify(err)
	}

	tag := s.tag(req.TransferCode)
	var (
		account domain.Account
		release domain.Transaction
	)
	err = s.withAccount(ctx, resolved, func(ctx context.Context, current domain.Account) error {
		account = current
		hold, err := s.findTransaction(ctx, current.ID, domain.TransactionTypeHold, tag)
		if errors.Is(err, domain.ErrTransferNotFound) {
			return fmt.Errorf("%w: transfer %s", domain.ErrMissingHold, req.TransferCode)
		}
		if err != nil {
			return err
		}

		posting := domain.NewPosting(current, caller.ActorID, s.now())
		release, err = posting.Release(hold)
		if err != nil {
			return fmt.Errorf("transfer %s: %w", req.TransferCode, err)
		}
		if err := s.ledgerRepo.ApplyPosting(ctx, *posting); err != nil {
			return err
		}
		account = posting.Account
		return nil
	})
	if err != nil {
		s.logRejected("release", req.TransferCode, err)
		return domain.TransferResult{}, classify(err)
	}

	logger.Info("transfer service release accepted", logger.Fields{
		"transferCode":        req.TransferCode,
		"accountId":           account.ExternalID,
		"releaseId":           release.ID,
		"withdrawableBalance": account.WithdrawableBalance().String(),
	})
	return domain.TransferResult{
		TransactionCode: req.TransactionCode,
		TransferCode:    req.TransferCode,
		AccountID:       account.ExternalID,
		State:           domain.ActionStateAccepted,
		TransferState:   domain.TransferStateReleased,
		CompletedAt:     release.CreatedAt,
	}, nil
}

// GetTransfer derives the current state of a transfer from its tagged
// transactions. Entries are tagged by routing and transfer code only, so the
// lookup ignores transactionCode and echoes it back. Expiration is not stored
// and stays empty.
func (s *TransferService) GetTransfer(ctx context.Context, transactionCode string, transferCode string) (domain.TransferResult, error) {
	txs, err := s.ledgerRepo.FindByTransferCode(ctx, s.routingCode, strings.TrimSpace(transferCode))
	if err != nil {
		return domain.TransferResult{}, classify(err)
	}
	if len(txs) == 0 {
		return domain.TransferResult{}, fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferCode)
	}

	state := domain.TransferStateNone
	var latest domain.Transaction
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionTypeWithdrawal, domain.TransactionTypeDeposit:
			state = domain.TransferStateCommitted
			latest = tx
		case domain.TransactionTypeRelease:
			if state != domain.TransferStateCommitted {
				state = domain.TransferStateReleased
				latest = tx
			}
		case domain.TransactionTypeHold:
			if state == domain.TransferStateNone {
				state = domain.TransferStateHeld
				latest = tx
			}
		}
	}
	if state == domain.TransferStateNone {
		return domain.TransferResult{}, fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferCode)
	}

	account, err := s.ledgerRepo.GetByID(ctx, latest.AccountID)
	if err != nil {
		return domain.TransferResult{}, classify(err)
	}

	return domain.TransferResult{
		TransactionCode: transactionCode,
		TransferCode:    transferCode,
		AccountID:       account.ExternalID,
		State:           domain.ActionStateAccepted,
		TransferState:   state,
		CompletedAt:     latest.CreatedAt,
	}, nil
}

// withAccount runs fn under the account lock with a fresh read of the account.
// The key is the account id alone; the tenant does not partition the ledger.
func (s *TransferService) withAccount(ctx context.Context, account domain.Account, fn func(context.Context, domain.Account) error) error {
	return s.locker.WithLock(ctx, lockKey(account), func(ctx context.Context) error {
		current, err := s.ledgerRepo.GetByID(ctx, account.ID)
		if err != nil {
			return err
		}
		return fn(ctx, current)
	})
}

func lockKey(account domain.Account) string {
	return "ledger:" + account.ID
}

func (s *TransferService) findTransaction(ctx context.Context, accountID string, typ domain.TransactionType, tag domain.PaymentDetail) (domain.Transaction, error) {
	return s.ledgerRepo.FindTransaction(ctx, accountID, typ, tag.RoutingCode, tag.TransferCode)
}

func (s *TransferService) hasTransaction(ctx context.Context, accountID string, typ domain.TransactionType, tag domain.PaymentDetail) (bool, error) {
	_, err := s.findTransaction(ctx, accountID, typ, tag)
	if errors.Is(err, domain.ErrTransferNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *TransferService) tag(transferCode string) domain.PaymentDetail {
	return domain.PaymentDetail{RoutingCode: s.routingCode, TransferCode: strings.TrimSpace(transferCode)}
}

func (s *TransferService) result(req domain.TransferRequest, account domain.Account, state domain.TransferState, at time.Time) domain.TransferResult {
	return domain.TransferResult{
		TransactionCode: req.TransactionCode,
		TransferCode:    req.TransferCode,
		AccountID:       account.ExternalID,
		State:           domain.ActionStateAccepted,
		TransferState:   state,
		Expiration:      req.Expiration,
		CompletedAt:     at,
	}
}

// saveNote runs after the account lock is released. A failed note never
// fails the committed transfer.
func (s *TransferService) saveNote(ctx context.Context, caller domain.Caller, account domain.Account, tx domain.Transaction, text string) {
	text = strings.TrimSpace(text)
	if s.noteRepo == nil || text == "" {
		return
	}

	_, err := s.noteRepo.Create(ctx, domain.Note{
		AccountID:     account.ID,
		TransactionID: tx.ID,
		Text:          text,
		CreatedBy:     caller.ActorID,
		CreatedAt:     s.now(),
	})
	if err != nil {
		logger.Error("transfer service save note failed", err, logger.Fields{
			"transactionId": tx.ID,
		})
	}
}

func (s *TransferService) logRejected(phase string, transferCode string, err error) {
	if domain.IsBusinessError(err) {
		logger.Info("transfer service "+phase+" rejected", logger.Fields{
			"transferCode": transferCode,
			"reason":       err.Error(),
		})
		return
	}
	logger.Error("transfer service "+phase+" failed", err, logger.Fields{
		"transferCode": transferCode,
	})
}

// classify keeps business errors as they are and marks everything else as
// an infrastructure failure.
func classify(err error) error {
	if err == nil || domain.IsBusinessError(err) || errors.Is(err, domain.ErrInfrastructure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInfrastructure, err)
}

