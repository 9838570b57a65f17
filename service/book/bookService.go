package booksvc

import (
	"context"
	"strings"

	"circulation/model"
	"circulation/util/apperr"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, q string) ([]model.Book, error)
	ByID(ctx context.Context, id string) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id string) error
}

type Service interface {
	Create(ctx context.Context, title, author string, publisher *string, copies int64) (*model.Book, error)
	List(ctx context.Context, q string) ([]model.Book, error)
	Detail(ctx context.Context, id string) (*model.Book, error)
	Update(ctx context.Context, id, title, author string, publisher *string, copies int64) (*model.Book, error)
	Delete(ctx context.Context, id string) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func validate(title, author string, copies int64) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return apperr.New(apperr.Validation, "title and author are required")
	}
	if copies < 1 {
		return apperr.New(apperr.Validation, "copies must be at least 1")
	}
	return nil
}

func (s *service) Create(ctx context.Context, title, author string, publisher *string, copies int64) (*model.Book, error) {
	if err := validate(title, author, copies); err != nil {
		return nil, err
	}
	b := &model.Book{Title: title, Author: author, Publisher: publisher, Copies: copies}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, q string) ([]model.Book, error) {
	return s.r.List(ctx, q)
}

func (s *service) Detail(ctx context.Context, id string) (*model.Book, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id, title, author string, publisher *string, copies int64) (*model.Book, error) {
	if err := validate(title, author, copies); err != nil {
		return nil, err
	}
	b := &model.Book{ID: id, Title: title, Author: author, Publisher: publisher, Copies: copies}
	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.r.Delete(ctx, id)
}
