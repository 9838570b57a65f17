// model/search_test.go
package model

import "testing"

func TestBookMatches(t *testing.T) {
	pub := "Penguin"
	b := &Book{Title: "The Go Programming Language", Author: "Donovan", Publisher: &pub}

	for _, q := range []string{"", "go prog", "DONOVAN", "penguin"} {
		if !BookMatches(b, q) {
			t.Fatalf("expected match for %q", q)
		}
	}
	if BookMatches(b, "rust") {
		t.Fatal("unexpected match for rust")
	}
	if BookMatches(&Book{Title: "X", Author: "Y"}, "penguin") {
		t.Fatal("nil publisher must not match")
	}
}

func TestBorrowMatches(t *testing.T) {
	b := &Borrow{
		Book: &Book{Title: "Dune", Author: "Herbert"},
		User: &User{Name: "Alice", Email: "alice@example.com"},
	}
	for _, q := range []string{"dune", "herb", "ALICE", "example.com"} {
		if !BorrowMatches(b, q) {
			t.Fatalf("expected match for %q", q)
		}
	}
	if BorrowMatches(b, "bob") {
		t.Fatal("unexpected match")
	}
	if BorrowMatches(&Borrow{}, "dune") {
		t.Fatal("borrow without joins must not match")
	}
}
