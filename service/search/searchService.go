package searchsvc

import (
	"context"
	"strings"

	"circulation/model"
	"circulation/util/apperr"
)

// The index is the live store: every query runs against committed rows, so
// there is no staleness window to manage.

type BookSource interface {
	List(ctx context.Context, q string) ([]model.Book, error)
}

type UserSource interface {
	List(ctx context.Context, q string) ([]model.User, error)
}

type BorrowSource interface {
	List(ctx context.Context, sortAsc bool, q string) ([]model.Borrow, error)
}

type Results struct {
	Books   []model.Book   `json:"books"`
	Users   []model.User   `json:"users"`
	Borrows []model.Borrow `json:"borrows"`
}

type Service interface {
	Search(ctx context.Context, q string) (*Results, error)
}

type service struct {
	books   BookSource
	users   UserSource
	borrows BorrowSource
}

func New(books BookSource, users UserSource, borrows BorrowSource) Service {
	return &service{books: books, users: users, borrows: borrows}
}

func (s *service) Search(ctx context.Context, q string) (*Results, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.New(apperr.Validation, "query is required")
	}

	books, err := s.books.List(ctx, q)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, q)
	if err != nil {
		return nil, err
	}
	borrows, err := s.borrows.List(ctx, false, q)
	if err != nil {
		return nil, err
	}
	return &Results{Books: books, Users: users, Borrows: borrows}, nil
}
