package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/library-service/cmd/api/book"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/source/file"

	_ "github.com/lib/pq"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	exc *Executor
}

type Executor struct {
	DBTX
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		exc: NewExc(db),
	}
}

func NewExc(dbtx DBTX) *Executor {
	return &Executor{DBTX: dbtx}
}

/* Returns a copy of the store whose queries run inside a new transaction. */
func (store *Store) BeginTx(ctx context.Context, opts *sql.TxOptions) (book.Repository, driver.Tx, error) {
	tx, err := store.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}

	txRepo := &Store{db: store.db, exc: NewExc(tx)}
	return txRepo, tx, nil
}

/* Connects to the database through a connection string and returns a pointer to a valid DB object (*sql.DB). */
func ConnectDb(connStr string, maxOpenConns int, logger *zap.Logger) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to db, opening: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	err = sqlDB.Ping()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to db, pinging: %w", err)
	}

	if logger != nil {
		logger.Info("connected to database", zap.Int("max_open_conns", maxOpenConns))
	}
	return sqlDB, nil
}

/* Applies every pending migration found under path. migrate.ErrNoChange is returned wrapped when there is nothing to do. */
func MigrationUp(store *Store, path string) error {
	m, err := newMigrate(store, path)
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}

	err = m.Up()
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}
	return nil
}

/* Rolls every migration back. Only used by tests. */
func MigrationDown(store *Store, path string) error {
	m, err := newMigrate(store, path)
	if err != nil {
		return fmt.Errorf("migrating down: %w", err)
	}

	err = m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating down: %w", err)
	}
	return nil
}

func newMigrate(store *Store, path string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(store.db, &postgres.Config{})
	if err != nil {
		return nil, err
	}

	return migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", path),
		"postgres", driver)
}

const bookColumns = `id, title, author, stock, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Stock, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return book.Book{}, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

/* Stores the book into the database, checks and returns it if succeed. The id is generated by the database. */
func (store *Store) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	sqlStatement := `
	INSERT INTO books (title, author, stock, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + bookColumns
	createdRow := store.exc.QueryRowContext(ctx, sqlStatement, bookEntry.Title, bookEntry.Author, bookEntry.Stock, bookEntry.CreatedAt, bookEntry.UpdatedAt)
	bookToReturn, err := scanBook(createdRow)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", classify(err))
	}

	return bookToReturn, nil
}

/* Searches a book in database based on ID and returns it if succeed. */
func (store *Store) GetBookByID(ctx context.Context, id int64) (book.Book, error) {
	sqlStatement := `SELECT ` + bookColumns + `
	FROM books
	WHERE id=$1;`
	foundRow := store.exc.QueryRowContext(ctx, sqlStatement, id)
	bookToReturn, err := scanBook(foundRow)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("searching by ID: %w", err)
		}
	}

	return bookToReturn, nil
}

/* Returns every book, newest first. */
func (store *Store) ListBooks(ctx context.Context) ([]book.Book, error) {
	sqlStatement := `SELECT ` + bookColumns + `
	FROM books
	ORDER BY created_at DESC, id DESC;`

	rows, err := store.exc.QueryContext(ctx, sqlStatement)
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}
	defer rows.Close()
	bookslist := []book.Book{}
	for rows.Next() {
		bookToReturn, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("listing books from db: %w", err)
		}

		bookslist = append(bookslist, bookToReturn)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}

	return bookslist, nil
}

/* Applies the non nil fields of changes in a single statement, so two concurrent partial updates never overwrite each other's fields. */
func (store *Store) UpdateBook(ctx context.Context, changes book.UpdateBookRequest, updatedAt time.Time) (book.Book, error) {
	sqlStatement := `
	UPDATE books
	SET title = COALESCE($2, title),
		author = COALESCE($3, author),
		stock = COALESCE($4, stock),
		updated_at = $5
	WHERE id = $1
	RETURNING ` + bookColumns
	updatedRow := store.exc.QueryRowContext(ctx, sqlStatement, changes.ID, nullString(changes.Title), nullString(changes.Author), nullInt(changes.Stock), updatedAt)
	bookToReturn, err := scanBook(updatedRow)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return book.Book{}, fmt.Errorf("updating on db: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("updating on db: %w", classify(err))
		}
	}

	return bookToReturn, nil
}

/* Deletes a book. Its borrow records go with it through ON DELETE CASCADE. */
func (store *Store) DeleteBook(ctx context.Context, id int64) (book.Book, error) {
	sqlStatement := `
	DELETE FROM books
	WHERE id = $1
	RETURNING ` + bookColumns
	deletedRow := store.exc.QueryRowContext(ctx, sqlStatement, id)
	bookToReturn, err := scanBook(deletedRow)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return book.Book{}, fmt.Errorf("deleting on db: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("deleting on db: %w", classify(err))
		}
	}

	return bookToReturn, nil
}

/* Takes one copy away if there is any left. The row lock taken by the UPDATE serializes concurrent borrows of the same book. */
func (store *Store) DecrementStockIfAvailable(ctx context.Context, id int64, updatedAt time.Time) (book.Book, error) {
	sqlStatement := `
	UPDATE books
	SET stock = stock - 1, updated_at = $2
	WHERE id = $1 AND stock > 0
	RETURNING ` + bookColumns
	updatedRow := store.exc.QueryRowContext(ctx, sqlStatement, id, updatedAt)
	bookToReturn, err := scanBook(updatedRow)
	if err == nil {
		return bookToReturn, nil
	}
	if err != sql.ErrNoRows {
		return book.Book{}, fmt.Errorf("decrementing stock on db: %w", classify(err))
	}

	// No row matched: either the book does not exist or its stock is zero.
	current, err := store.GetBookByID(ctx, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("decrementing stock on db: %w", err)
	}
	return current, fmt.Errorf("decrementing stock on db: %w", book.ErrResponseOutOfStock)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
