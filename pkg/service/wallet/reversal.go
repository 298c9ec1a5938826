package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
	"github.com/novawallet/novawallet/pkg/eventbus"
	"github.com/novawallet/novawallet/pkg/ledger"
	"github.com/novawallet/novawallet/pkg/txlog"
)

// ReversalWorker drains transactions carrying an unmet credit obligation:
// withdrawals parked in reversal_pending after a failed payout, and deposits
// stuck in settling after the payment was confirmed but the credit did not
// land. Each scan retries the credit with per-record exponential backoff;
// records past the escalation threshold are reported loudly but keep being
// retried, since a stuck credit is customer money.
type ReversalWorker struct {
	ledger ledger.Store
	log    txlog.Log
	bus    eventbus.Bus
	logger *slog.Logger
	cfg    *config.Reversal

	mu      sync.Mutex
	pending map[string]*reversalState

	stop chan struct{}
	done chan struct{}
}

type reversalState struct {
	attempts  int
	nextTry   time.Time
	escalated bool
}

// NewReversalWorker builds the worker; call Start to begin scanning.
func NewReversalWorker(store ledger.Store, log txlog.Log, bus eventbus.Bus, cfg *config.Reversal, logger *slog.Logger) *ReversalWorker {
	return &ReversalWorker{
		ledger:  store,
		log:     log,
		bus:     bus,
		logger:  logger.With("component", "reversal_worker"),
		cfg:     cfg,
		pending: make(map[string]*reversalState),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the scan loop. The loop runs until Stop is called or ctx is
// canceled; it is independent of any request context.
func (w *ReversalWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()
		w.logger.Info("reversal worker started", "interval", w.cfg.Interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.Sweep(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (w *ReversalWorker) Stop() {
	close(w.stop)
	<-w.done
}

// Sweep runs one pass over records owing a credit. Exported so tests and
// operational tooling can force a pass without waiting for the ticker.
func (w *ReversalWorker) Sweep(ctx context.Context) {
	now := time.Now()
	w.scan(ctx, wallet.StatusReversalPending, now)
	w.scan(ctx, wallet.StatusSettling, now)
	w.forget(ctx)
}

func (w *ReversalWorker) scan(ctx context.Context, status wallet.Status, now time.Time) {
	for rec, err := range w.log.ListByStatus(ctx, status, w.cfg.ScanLimit) {
		if err != nil {
			w.logger.Error("credit obligation scan failed", "status", status, "error", err)
			return
		}
		// A fresh settling record may still be owned by the inline creditor
		// in ConfirmSettlement, whose bounded retries finish or give up well
		// within one sweep interval.
		if status == wallet.StatusSettling && now.Sub(rec.UpdatedAt) < w.cfg.Interval {
			continue
		}
		if !w.due(rec.ID, now) {
			continue
		}
		w.retry(ctx, rec)
	}
}

func (w *ReversalWorker) due(id string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.pending[id]
	if !ok {
		w.pending[id] = &reversalState{}
		return true
	}
	return !now.Before(st.nextTry)
}

// retry attempts the credit and, on success, closes the record out: a
// reversed withdrawal ends failed, a settling deposit ends settled.
func (w *ReversalWorker) retry(ctx context.Context, rec *dto.TransactionRead) {
	logger := w.logger.With("transaction_id", rec.ID, "account_id", rec.AccountID, "amount", rec.Amount)

	_, committed, err := w.ledger.AtomicAdjust(ctx, rec.AccountID, rec.Amount)
	if err == nil && committed {
		closeout := wallet.StatusFailed
		if rec.Status == wallet.StatusSettling {
			closeout = wallet.StatusSettled
		}
		if terr := w.log.Transition(ctx, rec.ID, rec.Status, closeout, dto.TransactionUpdate{}); terr != nil {
			// Lost the race to another sweeper; the credit stands with whoever
			// won the transition.
			logger.Warn("credit close-out transition rejected", "error", terr)
			w.clear(rec.ID)
			return
		}
		if rec.Status == wallet.StatusSettling {
			w.bus.Publish(ctx, wallet.TransactionSettled{
				TransactionID: rec.ID,
				AccountID:     rec.AccountID,
				Amount:        rec.Amount,
				Kind:          rec.Kind,
				At:            time.Now(),
			})
			logger.Info("settlement credit completed")
		} else {
			w.bus.Publish(ctx, wallet.WithdrawalFailed{
				TransactionID: rec.ID,
				AccountID:     rec.AccountID,
				Amount:        rec.Amount,
				Reason:        "payout failed, balance reversed",
				At:            time.Now(),
			})
			logger.Info("reversal completed")
		}
		w.clear(rec.ID)
		return
	}
	if err == nil {
		err = fmt.Errorf("credit of %d not committed", rec.Amount)
	}
	w.recordFailure(ctx, rec, err)
}

func (w *ReversalWorker) recordFailure(ctx context.Context, rec *dto.TransactionRead, err error) {
	w.mu.Lock()
	st := w.pending[rec.ID]
	st.attempts++
	st.nextTry = time.Now().Add(w.backoff(st.attempts))
	escalate := st.attempts >= w.cfg.EscalateAfter && !st.escalated
	if escalate {
		st.escalated = true
	}
	attempts := st.attempts
	w.mu.Unlock()

	w.logger.Warn("credit retry failed",
		"transaction_id", rec.ID, "status", rec.Status, "attempts", attempts, "error", err)
	if escalate {
		w.logger.Error("credit stuck past escalation threshold, operator attention required",
			"transaction_id", rec.ID, "account_id", rec.AccountID, "amount", rec.Amount, "attempts", attempts)
		w.bus.Publish(ctx, wallet.ReversalStuck{
			TransactionID: rec.ID,
			AccountID:     rec.AccountID,
			Amount:        rec.Amount,
			Attempts:      attempts,
			LastError:     err.Error(),
			At:            time.Now(),
		})
	}
}

func (w *ReversalWorker) backoff(attempts int) time.Duration {
	d := w.cfg.InitialBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= w.cfg.MaxBackoff {
			return w.cfg.MaxBackoff
		}
	}
	return d
}

func (w *ReversalWorker) clear(id string) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// forget drops tracking state for records no longer owing a credit, so the
// map does not grow with records resolved by other replicas.
func (w *ReversalWorker) forget(ctx context.Context) {
	w.mu.Lock()
	ids := make([]string, 0, len(w.pending))
	for id := range w.pending {
		ids = append(ids, id)
	}
	w.mu.Unlock()

	for _, id := range ids {
		rec, err := w.log.Get(ctx, id)
		if err != nil ||
			(rec.Status != wallet.StatusReversalPending && rec.Status != wallet.StatusSettling) {
			w.clear(id)
		}
	}
}
