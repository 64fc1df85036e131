package services

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/robfig/cron/v3"
)

// HoldMonitor reports holds left outstanding longer than maxAge. It only
// reads the ledger; holds stay until the scheme commits or releases them.
type HoldMonitor struct {
	txRepo   domain.TransactionRepository
	schedule cron.Schedule
	expr     string
	maxAge   time.Duration
	now      func() time.Time
}

func NewHoldMonitor(txRepo domain.TransactionRepository, expr string, maxAge time.Duration) (*HoldMonitor, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse hold monitor schedule %q: %w", expr, err)
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("hold monitor max age must be positive")
	}

	return &HoldMonitor{
		txRepo:   txRepo,
		schedule: schedule,
		expr:     expr,
		maxAge:   maxAge,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Check logs one warning per stale hold and returns how many it found.
func (m *HoldMonitor) Check(ctx context.Context) (int, error) {
	now := m.now()
	holds, err := m.txRepo.ListUnreleasedHolds(ctx, now.Add(-m.maxAge))
	if err != nil {
		logger.Error("hold monitor list unreleased holds failed", err, nil)
		return 0, classify(err)
	}

	for _, hold := range holds {
		fields := logger.Fields{
			"holdId":    hold.ID,
			"accountId": hold.AccountID,
			"amount":    hold.Amount.String(),
			"currency":  hold.Currency,
			"age":       now.Sub(hold.CreatedAt).Round(time.Second).String(),
		}
		if hold.PaymentDetail != nil {
			fields["transferCode"] = hold.PaymentDetail.TransferCode
		}
		logger.Warn("hold monitor stale hold", fields)
	}
	return len(holds), nil
}

// Run checks on the configured schedule until ctx is done.
func (m *HoldMonitor) Run(ctx context.Context) error {
	c := cron.New()
	c.Schedule(m.schedule, cron.FuncJob(func() {
		_, _ = m.Check(ctx)
	}))

	logger.Info("hold monitor started", logger.Fields{
		"schedule": m.expr,
		"maxAge":   m.maxAge.String(),
	})
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("hold monitor stopped", nil)
	return nil
}
