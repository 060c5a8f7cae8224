package database

import (
	"context"
	"fmt"

	"github.com/library-service/cmd/api/book"
)

/* Appends a record to the borrow ledger. id and created_at come from the row that was written. */
func (store *Store) AppendBorrowRecord(ctx context.Context, record book.BorrowRecord) (book.BorrowRecord, error) {
	sqlStatement := `
	INSERT INTO borrow_logs (user_id, book_id, borrow_date, latitude, longitude, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, user_id, book_id, borrow_date, latitude, longitude, created_at`
	createdRow := store.exc.QueryRowContext(ctx, sqlStatement, record.UserID, record.BookID, record.BorrowDate, record.Latitude, record.Longitude, record.CreatedAt)
	var r book.BorrowRecord
	err := createdRow.Scan(&r.ID, &r.UserID, &r.BookID, &r.BorrowDate, &r.Latitude, &r.Longitude, &r.CreatedAt)
	if err != nil {
		return book.BorrowRecord{}, fmt.Errorf("storing borrow record on db: %w", classify(err))
	}
	r.BorrowDate = book.DateOf(r.BorrowDate)
	r.CreatedAt = r.CreatedAt.UTC()

	return r, nil
}

const borrowLogsQuery = `SELECT l.id, l.user_id, l.book_id, l.borrow_date, l.latitude, l.longitude, l.created_at,
	b.id, b.title, b.author
	FROM borrow_logs l
	JOIN books b ON b.id = l.book_id`

/* Returns every ledger record, newest first. */
func (store *Store) ListBorrowLogs(ctx context.Context) ([]book.BorrowLog, error) {
	logs, err := store.listBorrowLogs(ctx, borrowLogsQuery+`
	ORDER BY l.created_at DESC, l.id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs from db: %w", err)
	}
	return logs, nil
}

/* Returns the ledger records of one user, newest first. */
func (store *Store) ListBorrowLogsByUser(ctx context.Context, userID int64) ([]book.BorrowLog, error) {
	logs, err := store.listBorrowLogs(ctx, borrowLogsQuery+`
	WHERE l.user_id = $1
	ORDER BY l.created_at DESC, l.id DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs of user %d from db: %w", userID, err)
	}
	return logs, nil
}

func (store *Store) listBorrowLogs(ctx context.Context, sqlStatement string, args ...any) ([]book.BorrowLog, error) {
	rows, err := store.exc.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []book.BorrowLog{}
	for rows.Next() {
		var l book.BorrowLog
		err = rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowDate, &l.Latitude, &l.Longitude, &l.CreatedAt,
			&l.Book.ID, &l.Book.Title, &l.Book.Author)
		if err != nil {
			return nil, err
		}
		l.BorrowDate = book.DateOf(l.BorrowDate)
		l.CreatedAt = l.CreatedAt.UTC()
		logs = append(logs, l)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return logs, nil
}
