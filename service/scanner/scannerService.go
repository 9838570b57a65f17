package scanner

import (
	"context"
	"log/slog"
	"time"

	"circulation/model"
	notifyrepo "circulation/repository/notify"
)

// Status is derived at read time, so the sweep exists only to make OVERDUE
// transitions observable promptly: it fires the notification hook once per
// borrow. Fines accrue strictly at return time; the sweep never touches
// balances, which keeps repeated runs idempotent.

type Repo interface {
	ListOverdueUnnotified(ctx context.Context, now time.Time) ([]model.Borrow, error)
	MarkOverdueNotified(ctx context.Context, ids []string) error
}

type Scanner struct {
	r   Repo
	n   notifyrepo.Notifier
	log *slog.Logger
}

func New(r Repo, n notifyrepo.Notifier, log *slog.Logger) *Scanner {
	return &Scanner{r: r, n: n, log: log}
}

// Sweep notifies for loans newly past due and returns how many were handled.
// Notification failures are logged and left unmarked so the next sweep
// retries them; they never affect ledger state.
func (s *Scanner) Sweep(ctx context.Context) (int, error) {
	overdue, err := s.r.ListOverdueUnnotified(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	notified := make([]string, 0, len(overdue))
	for i := range overdue {
		b := &overdue[i]
		if err := s.n.BorrowOverdue(ctx, b); err != nil {
			s.log.Warn("overdue notification failed", "borrow_id", b.ID, "err", err)
			continue
		}
		notified = append(notified, b.ID)
	}
	if err := s.r.MarkOverdueNotified(ctx, notified); err != nil {
		return len(notified), err
	}
	return len(notified), nil
}

// Run sweeps on the given interval until the context is canceled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.log.Error("overdue sweep failed", "err", err)
			} else if n > 0 {
				s.log.Info("overdue sweep", "notified", n)
			}
		}
	}
}
