// model/borrow_test.go
package model

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ret := now.Add(-time.Hour)

	cases := []struct {
		name string
		b    Borrow
		want BorrowStatus
	}{
		{"not yet due", Borrow{DueDate: now.Add(24 * time.Hour)}, BorrowActive},
		{"due exactly now", Borrow{DueDate: now}, BorrowActive},
		{"past due", Borrow{DueDate: now.Add(-time.Minute)}, BorrowOverdue},
		{"returned before due", Borrow{DueDate: now.Add(24 * time.Hour), ReturnedAt: &ret}, BorrowReturned},
		{"returned after due", Borrow{DueDate: now.Add(-72 * time.Hour), ReturnedAt: &ret}, BorrowReturned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.b.StatusAt(now); got != tc.want {
				t.Fatalf("StatusAt = %s; want %s", got, tc.want)
			}
		})
	}
}

func TestFineAmount(t *testing.T) {
	due := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if got := FineAmount(due, due.Add(72*time.Hour), 10); got != 30 {
		t.Fatalf("3 days late at 10/day: got %v; want 30", got)
	}
	if got := FineAmount(due, due, 10); got != 0 {
		t.Fatalf("on time: got %v; want 0", got)
	}
	if got := FineAmount(due, due.Add(-time.Hour), 10); got != 0 {
		t.Fatalf("early: got %v; want 0", got)
	}
	// A started day counts in full.
	if got := FineAmount(due, due.Add(25*time.Hour), 10); got != 20 {
		t.Fatalf("25h late: got %v; want 20", got)
	}
}

func TestAvailableCopies(t *testing.T) {
	book := &Book{ID: "b1", Copies: 2}
	ret := time.Now()
	borrows := []Borrow{
		{BookID: "b1"},                   // active
		{BookID: "b1", ReturnedAt: &ret}, // returned, frees a copy
		{BookID: "b2"},                   // other title
	}
	if got := AvailableCopies(book, borrows); got != 1 {
		t.Fatalf("available = %d; want 1", got)
	}

	// Never negative, even if the ledger somehow over-counts.
	over := []Borrow{{BookID: "b1"}, {BookID: "b1"}, {BookID: "b1"}}
	if got := AvailableCopies(book, over); got != 0 {
		t.Fatalf("available = %d; want 0", got)
	}
}
