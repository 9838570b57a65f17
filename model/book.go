// model/book.go
package model

import "time"

type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Publisher *string   `json:"publisher,omitempty"`
	Copies    int64     `json:"copies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived on read, never stored.
	Available   int64 `json:"available"`
	IsAvailable bool  `json:"is_available"`
}
