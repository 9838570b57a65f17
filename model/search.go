// model/search.go
package model

import "strings"

// ContainsFold reports whether s contains substr, case-insensitively.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// BookMatches matches q against title, author and publisher.
func BookMatches(b *Book, q string) bool {
	if q == "" {
		return true
	}
	if ContainsFold(b.Title, q) || ContainsFold(b.Author, q) {
		return true
	}
	return b.Publisher != nil && ContainsFold(*b.Publisher, q)
}

// UserMatches matches q against name and email.
func UserMatches(u *User, q string) bool {
	if q == "" {
		return true
	}
	return ContainsFold(u.Name, q) || ContainsFold(u.Email, q)
}

// BorrowMatches matches q against the joined book and user fields.
func BorrowMatches(b *Borrow, q string) bool {
	if q == "" {
		return true
	}
	if b.Book != nil && BookMatches(b.Book, q) {
		return true
	}
	return b.User != nil && UserMatches(b.User, q)
}
