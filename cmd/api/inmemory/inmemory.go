package inmemory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/library-service/cmd/api/book"
)

const (
	tableBook         = "book"
	tableBorrowRecord = "borrow_record"
	tableSequence     = "sequence"
)

// InMemoryStore keeps books and the borrow ledger in a go-memdb database.
// memdb allows one write transaction at a time, which is what makes the
// stock check and the decrement a single step.
type InMemoryStore struct {
	db *memdb.MemDB
	// txn is set only on the store handed out by BeginTx.
	txn *memdb.Txn
}

// sequence holds the last id handed out for a table.
type sequence struct {
	Table string
	Last  int64
}

func NewInMemoryStore() (*InMemoryStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableBook: {
				Name: tableBook,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
				},
			},
			tableBorrowRecord: {
				Name: tableBorrowRecord,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
					"user_id": {
						Name:    "user_id",
						Unique:  false,
						Indexer: &memdb.IntFieldIndex{Field: "UserID"},
					},
					"book_id": {
						Name:    "book_id",
						Unique:  false,
						Indexer: &memdb.IntFieldIndex{Field: "BookID"},
					},
				},
			},
			tableSequence: {
				Name: tableSequence,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Table"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validating in-memory schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &InMemoryStore{db: db}, nil
}

/* Returns the transaction to write with. finish commits or aborts it unless it belongs to an enclosing BeginTx. */
func (store *InMemoryStore) write(ctx context.Context) (txn *memdb.Txn, finish func(commit bool), err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if store.txn != nil {
		return store.txn, func(bool) {}, nil
	}
	txn = store.db.Txn(true)
	return txn, func(commit bool) {
		if commit {
			txn.Commit()
			return
		}
		txn.Abort()
	}, nil
}

func (store *InMemoryStore) read(ctx context.Context) (*memdb.Txn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if store.txn != nil {
		return store.txn, nil
	}
	return store.db.Txn(false), nil
}

/* Hands out the next id for table. The counter moves with txn, so an aborted transaction does not burn ids. */
func nextID(txn *memdb.Txn, table string) (int64, error) {
	raw, err := txn.First(tableSequence, "id", table)
	if err != nil {
		return 0, err
	}
	seq := sequence{Table: table}
	if raw != nil {
		seq = raw.(sequence)
	}
	seq.Last++
	if err := txn.Insert(tableSequence, seq); err != nil {
		return 0, err
	}
	return seq.Last, nil
}

func findBook(txn *memdb.Txn, id int64) (book.Book, error) {
	raw, err := txn.First(tableBook, "id", id)
	if err != nil {
		return book.Book{}, err
	}
	if raw == nil {
		return book.Book{}, book.ErrResponseBookNotFound
	}
	return raw.(book.Book), nil
}

// -- Books --

func (store *InMemoryStore) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	txn, finish, err := store.write(ctx)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	committed := false
	defer func() { finish(committed) }()

	id, err := nextID(txn, tableBook)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	bookEntry.ID = id

	if err := txn.Insert(tableBook, bookEntry); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	committed = true
	return bookEntry, nil
}

func (store *InMemoryStore) GetBookByID(ctx context.Context, id int64) (book.Book, error) {
	txn, err := store.read(ctx)
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}

	b, err := findBook(txn, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	return b, nil
}

/* Returns every book, newest first. */
func (store *InMemoryStore) ListBooks(ctx context.Context) ([]book.Book, error) {
	txn, err := store.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}

	it, err := txn.Get(tableBook, "id")
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}

	books := []book.Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		books = append(books, obj.(book.Book))
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID > books[j].ID
	})
	return books, nil
}

/* Applies the non nil fields of changes. Read and write happen in the same write transaction. */
func (store *InMemoryStore) UpdateBook(ctx context.Context, changes book.UpdateBookRequest, updatedAt time.Time) (book.Book, error) {
	txn, finish, err := store.write(ctx)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	committed := false
	defer func() { finish(committed) }()

	updatedBook, err := findBook(txn, changes.ID)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	if changes.Title != nil {
		updatedBook.Title = *changes.Title
	}
	if changes.Author != nil {
		updatedBook.Author = *changes.Author
	}
	if changes.Stock != nil {
		updatedBook.Stock = *changes.Stock
	}
	//CreatedAt will not change
	updatedBook.UpdatedAt = updatedAt

	if err := txn.Insert(tableBook, updatedBook); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}

	committed = true
	return updatedBook, nil
}

/* Deletes the book together with its borrow records. */
func (store *InMemoryStore) DeleteBook(ctx context.Context, id int64) (book.Book, error) {
	txn, finish, err := store.write(ctx)
	if err != nil {
		return book.Book{}, fmt.Errorf("deleting book on db: %w", err)
	}
	committed := false
	defer func() { finish(committed) }()

	deletedBook, err := findBook(txn, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("deleting book on db: %w", err)
	}

	if _, err := txn.DeleteAll(tableBorrowRecord, "book_id", id); err != nil {
		return book.Book{}, fmt.Errorf("deleting borrow history on db: %w", err)
	}
	if err := txn.Delete(tableBook, deletedBook); err != nil {
		return book.Book{}, fmt.Errorf("deleting book on db: %w", err)
	}

	committed = true
	return deletedBook, nil
}

/* Takes one copy away if there is any left. The unchanged book comes back with ErrResponseOutOfStock otherwise. */
func (store *InMemoryStore) DecrementStockIfAvailable(ctx context.Context, id int64, updatedAt time.Time) (book.Book, error) {
	txn, finish, err := store.write(ctx)
	if err != nil {
		return book.Book{}, fmt.Errorf("decrementing stock on db: %w", err)
	}
	committed := false
	defer func() { finish(committed) }()

	b, err := findBook(txn, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("decrementing stock on db: %w", err)
	}
	if b.Stock <= 0 {
		return b, fmt.Errorf("decrementing stock on db: %w", book.ErrResponseOutOfStock)
	}

	b.Stock--
	b.UpdatedAt = updatedAt
	if err := txn.Insert(tableBook, b); err != nil {
		return book.Book{}, fmt.Errorf("decrementing stock on db: %w", err)
	}

	committed = true
	return b, nil
}

// -- Transactions --

/* Opens a write transaction. It blocks until any other writer is done. */
func (store *InMemoryStore) BeginTx(ctx context.Context, opts *sql.TxOptions) (book.Repository, driver.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	if store.txn != nil {
		return nil, nil, fmt.Errorf("beginning transaction: nested transactions are not supported")
	}

	txn := store.db.Txn(true)
	txStore := &InMemoryStore{
		db:  store.db,
		txn: txn,
	}

	return txStore, &TxWrapper{txn: txn}, nil
}

// TxWrapper exposes a memdb write transaction as a driver.Tx.
type TxWrapper struct {
	txn *memdb.Txn
}

func (tx *TxWrapper) Commit() error {
	tx.txn.Commit()
	return nil
}

/* Aborting after Commit is a no-op in memdb, so Rollback can always be deferred. */
func (tx *TxWrapper) Rollback() error {
	tx.txn.Abort()
	return nil
}
