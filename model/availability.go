// model/availability.go
package model

// CountActiveLoans counts borrows of the book that still occupy a copy.
func CountActiveLoans(bookID string, borrows []Borrow) int64 {
	var n int64
	for i := range borrows {
		if borrows[i].BookID == bookID && borrows[i].IsActive() {
			n++
		}
	}
	return n
}

// AvailableCopies derives how many copies of the book can be lent right now.
// Pure function of catalog + ledger state; never negative.
func AvailableCopies(book *Book, borrows []Borrow) int64 {
	avail := book.Copies - CountActiveLoans(book.ID, borrows)
	if avail < 0 {
		return 0
	}
	return avail
}
