package book

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The validators below take raw decoded JSON values (decoded with UseNumber)
// so that "missing" and "wrong type" can be told apart. None of them does I/O.

/* Converts a decoded JSON value into a float64. ok is false when v is not a number. */
func toNumber(v any) (f float64, ok bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

/* Requires v to be a positive integer. field names the value in messages, e.g. "Book ID". */
func ValidateID(field string, v any) (int64, error) {
	if v == nil {
		return 0, validationError(field + " is required")
	}
	f, ok := toNumber(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, validationError(field + " must be an integer")
	}
	if f < 1 {
		return 0, validationError(field + " must be a positive integer")
	}
	return int64(f), nil
}

/* Parses an ID taken from a URL path. */
func ParsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrResponseIdInvalidFormat
	}
	if id < 1 {
		return 0, ErrResponseIdInvalidFormat.WithMessage("Invalid book ID: must be a positive integer")
	}
	return id, nil
}

func ValidateLatitude(v any) (float64, error) {
	return validateCoordinate("Latitude", v, LatitudeMin, LatitudeMax)
}

func ValidateLongitude(v any) (float64, error) {
	return validateCoordinate("Longitude", v, LongitudeMin, LongitudeMax)
}

func validateCoordinate(field string, v any, min, max float64) (float64, error) {
	if v == nil {
		return 0, validationError(field + " is required")
	}
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) {
		return 0, validationError(field + " must be a number")
	}
	if f < min || f > max {
		return 0, validationError(fmt.Sprintf("%s must be between %v and %v", field, min, max))
	}
	return f, nil
}

/* Requires a string that is non-empty once trimmed and at most TextMaxLength characters. Returns it trimmed. */
func ValidateText(field string, v any) (string, error) {
	if v == nil {
		return "", validationError(field + " is required and cannot be empty")
	}
	s, ok := v.(string)
	if !ok {
		return "", validationError(field + " must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationError(field + " cannot be empty")
	}
	if utf8.RuneCountInString(s) > TextMaxLength {
		return "", validationError(fmt.Sprintf("%s must be between 1 and %d characters", field, TextMaxLength))
	}
	return s, nil
}

func ValidateStock(v any) (int, error) {
	f, ok := toNumber(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, validationError("Stock must be an integer")
	}
	if f < 0 {
		return 0, validationError("Stock cannot be negative")
	}
	return int(f), nil
}

/* Checks an already typed borrow request. It runs before any storage access. */
func ValidateBorrowRequest(req BorrowRequest) error {
	if req.UserID < 1 {
		return validationError("User ID must be a positive integer")
	}
	if req.BookID < 1 {
		return validationError("Book ID must be a positive integer")
	}
	if _, err := ValidateLatitude(req.Latitude); err != nil {
		return err
	}
	if _, err := ValidateLongitude(req.Longitude); err != nil {
		return err
	}
	return nil
}

/* Validates a book about to be created and returns it with title and author trimmed. */
func normalizeBook(b Book) (Book, error) {
	title, err := ValidateText("Title", b.Title)
	if err != nil {
		return Book{}, err
	}
	author, err := ValidateText("Author", b.Author)
	if err != nil {
		return Book{}, err
	}
	if b.Stock < 0 {
		return Book{}, validationError("Stock cannot be negative")
	}
	b.Title = title
	b.Author = author
	return b, nil
}
