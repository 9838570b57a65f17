// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"testing"

	"circulation/model"
	booksvc "circulation/service/book"
	"circulation/util/apperr"
)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
	listFn   func(ctx context.Context, q string) ([]model.Book, error)
	byIDFn   func(ctx context.Context, id string) (*model.Book, error)
	updateFn func(ctx context.Context, b *model.Book) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context, q string) ([]model.Book, error) {
	return m.listFn(ctx, q)
}
func (m *repoMock) ByID(ctx context.Context, id string) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) Update(ctx context.Context, b *model.Book) error { return m.updateFn(ctx, b) }
func (m *repoMock) Delete(ctx context.Context, id string) error     { return m.deleteFn(ctx, id) }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	cases := []struct {
		name          string
		title, author string
		copies        int64
	}{
		{"empty title", "", "Author", 1},
		{"blank author", "Title", "   ", 1},
		{"zero copies", "Title", "Author", 0},
		{"negative copies", "Title", "Author", -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tc.title, tc.author, nil, tc.copies)
			if apperr.KindOf(err) != apperr.Validation {
				t.Fatalf("got %v; want validation error", err)
			}
		})
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = "book-1"
			return nil
		},
	}
	s := booksvc.New(m)
	b, err := s.Create(context.Background(), "Dune", "Herbert", nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID != "book-1" || b.Copies != 3 {
		t.Fatalf("got %+v; want id book-1, copies 3", b)
	}
}

func TestDelete_PassesThroughConflict(t *testing.T) {
	m := &repoMock{
		deleteFn: func(ctx context.Context, id string) error {
			return apperr.New(apperr.Conflict, "book has active borrows")
		},
	}
	s := booksvc.New(m)
	if err := s.Delete(context.Background(), "book-1"); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("got %v; want conflict", err)
	}
}
