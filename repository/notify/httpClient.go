package notifyrepo

import (
	"context"
	"time"

	"circulation/model"
	"circulation/util/httpx"
)

type webhook struct{ url string }

// NewWebhook posts notification events as JSON to the configured endpoint.
func NewWebhook(url string) Notifier { return &webhook{url: url} }

func (w *webhook) SendOTP(ctx context.Context, email, code, purpose string) error {
	return httpx.PostJSON(ctx, w.url, map[string]any{
		"event":   "otp",
		"email":   email,
		"code":    code,
		"purpose": purpose,
	})
}

func (w *webhook) BorrowOverdue(ctx context.Context, b *model.Borrow) error {
	return httpx.PostJSON(ctx, w.url, map[string]any{
		"event":     "borrow_overdue",
		"borrow_id": b.ID,
		"user_id":   b.UserID,
		"book_id":   b.BookID,
		"due_date":  b.DueDate.Format(time.RFC3339),
	})
}
