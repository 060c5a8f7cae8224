package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"
	"github.com/library-service/cmd/api/book"
)

/* Appends a record to the borrow ledger. The referenced book must exist in the same transaction. */
func (store *InMemoryStore) AppendBorrowRecord(ctx context.Context, record book.BorrowRecord) (book.BorrowRecord, error) {
	txn, finish, err := store.write(ctx)
	if err != nil {
		return book.BorrowRecord{}, fmt.Errorf("storing borrow record on db: %w", err)
	}
	committed := false
	defer func() { finish(committed) }()

	if _, err := findBook(txn, record.BookID); err != nil {
		if errors.Is(err, book.ErrResponseBookNotFound) {
			err = book.ErrResponseInvalidReference.WithMessage("Referenced record does not exist")
		}
		return book.BorrowRecord{}, fmt.Errorf("storing borrow record on db: %w", err)
	}

	id, err := nextID(txn, tableBorrowRecord)
	if err != nil {
		return book.BorrowRecord{}, fmt.Errorf("storing borrow record on db: %w", err)
	}
	record.ID = id
	record.BorrowDate = book.DateOf(record.BorrowDate)

	if err := txn.Insert(tableBorrowRecord, record); err != nil {
		return book.BorrowRecord{}, fmt.Errorf("storing borrow record on db: %w", err)
	}

	committed = true
	return record, nil
}

/* Returns every ledger record, newest first. */
func (store *InMemoryStore) ListBorrowLogs(ctx context.Context) ([]book.BorrowLog, error) {
	txn, err := store.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs from db: %w", err)
	}

	it, err := txn.Get(tableBorrowRecord, "id")
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs from db: %w", err)
	}
	logs, err := joinBooks(txn, it)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs from db: %w", err)
	}
	return logs, nil
}

/* Returns the ledger records of one user, newest first. */
func (store *InMemoryStore) ListBorrowLogsByUser(ctx context.Context, userID int64) ([]book.BorrowLog, error) {
	txn, err := store.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs of user %d from db: %w", userID, err)
	}

	it, err := txn.Get(tableBorrowRecord, "user_id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs of user %d from db: %w", userID, err)
	}
	logs, err := joinBooks(txn, it)
	if err != nil {
		return nil, fmt.Errorf("listing borrow logs of user %d from db: %w", userID, err)
	}
	return logs, nil
}

func joinBooks(txn *memdb.Txn, it memdb.ResultIterator) ([]book.BorrowLog, error) {
	logs := []book.BorrowLog{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		r := obj.(book.BorrowRecord)
		b, err := findBook(txn, r.BookID)
		if err != nil {
			return nil, fmt.Errorf("joining book %d: %w", r.BookID, err)
		}
		logs = append(logs, book.BorrowLog{BorrowRecord: r, Book: b.Summary()})
	}

	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].CreatedAt.Equal(logs[j].CreatedAt) {
			return logs[i].CreatedAt.After(logs[j].CreatedAt)
		}
		return logs[i].ID > logs[j].ID
	})
	return logs, nil
}
