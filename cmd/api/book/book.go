package book

import (
	"time"
)

const (
	TextMaxLength = 255
	LatitudeMin   = -90.0
	LatitudeMax   = 90.0
	LongitudeMin  = -180.0
	LongitudeMax  = 180.0
)

type Book struct {
	ID        int64
	Title     string
	Author    string
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BorrowRecord is one entry of the borrow ledger. It is never changed after
// it has been appended.
type BorrowRecord struct {
	ID         int64
	UserID     int64
	BookID     int64
	BorrowDate time.Time
	Latitude   float64
	Longitude  float64
	CreatedAt  time.Time
}

type BookSummary struct {
	ID     int64
	Title  string
	Author string
}

// BorrowLog is a ledger record joined with the book it points to.
type BorrowLog struct {
	BorrowRecord
	Book BookSummary
}

type CreateBookRequest struct {
	Title  string
	Author string
	Stock  int
}

/* Nil fields are left untouched by the update. */
type UpdateBookRequest struct {
	ID     int64
	Title  *string
	Author *string
	Stock  *int
}

type BorrowRequest struct {
	UserID    int64
	BookID    int64
	Latitude  float64
	Longitude float64
}

// BorrowReceipt is what a committed borrow hands back: the book after the
// decrement and the ledger record that was appended.
type BorrowReceipt struct {
	Book   Book
	Record BorrowRecord
}

func (b Book) Summary() BookSummary {
	return BookSummary{ID: b.ID, Title: b.Title, Author: b.Author}
}

/* Truncates a timestamp to its calendar day, in UTC. */
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
