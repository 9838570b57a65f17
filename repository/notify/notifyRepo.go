package notifyrepo

import (
	"context"
	"log/slog"
	"time"

	"circulation/model"
)

// Notifier is the outbound collaborator contract: OTP delivery for profile
// changes and the overdue hook fired by the scanner. Implementations are
// fire-and-forget from the engine's point of view; a failure here must never
// roll back a ledger transaction.
type Notifier interface {
	SendOTP(ctx context.Context, email, code, purpose string) error
	BorrowOverdue(ctx context.Context, b *model.Borrow) error
}

// LogNotifier is the default when no webhook is configured. Useful in dev:
// the OTP code lands in the service log.
type LogNotifier struct{ Log *slog.Logger }

func (n *LogNotifier) SendOTP(ctx context.Context, email, code, purpose string) error {
	n.Log.Info("otp issued", "email", email, "purpose", purpose, "code", code)
	return nil
}

func (n *LogNotifier) BorrowOverdue(ctx context.Context, b *model.Borrow) error {
	n.Log.Info("borrow overdue",
		"borrow_id", b.ID,
		"user_id", b.UserID,
		"book_id", b.BookID,
		"due_date", b.DueDate.Format(time.RFC3339),
	)
	return nil
}
