// model/borrow.go
package model

import (
	"math"
	"time"
)

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "ACTIVE"
	BorrowOverdue  BorrowStatus = "OVERDUE"
	BorrowReturned BorrowStatus = "RETURNED"
)

type Borrow struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`

	// Derived from returned_at/due_date at read time; only the RETURNED
	// bit (returned_at) is authoritative storage.
	Status BorrowStatus `json:"status"`

	User *User `json:"user,omitempty"`
	Book *Book `json:"book,omitempty"`
}

// StatusAt derives the lifecycle status as of now.
func (b *Borrow) StatusAt(now time.Time) BorrowStatus {
	if b.ReturnedAt != nil {
		return BorrowReturned
	}
	if now.After(b.DueDate) {
		return BorrowOverdue
	}
	return BorrowActive
}

// IsActive reports whether the borrow still occupies a copy (ACTIVE or OVERDUE).
func (b *Borrow) IsActive() bool { return b.ReturnedAt == nil }

// FineAmount computes the late fee for a borrow returned at returnedAt.
// Every started 24h period past the due date counts as one late day.
func FineAmount(dueDate, returnedAt time.Time, ratePerDay float64) float64 {
	if !returnedAt.After(dueDate) {
		return 0
	}
	days := math.Ceil(returnedAt.Sub(dueDate).Hours() / 24)
	return days * ratePerDay
}
