package book

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/library-service/cmd/api/pkgerrors"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/library-service/cmd/api/book Repository,Notifier
//go:generate mockgen -destination=mocks/mock_tx.go -package=mocks database/sql/driver Tx

type ServiceAPI interface {
	CreateBook(ctx context.Context, req CreateBookRequest) (Book, error)
	GetBook(ctx context.Context, id int64) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	UpdateBook(ctx context.Context, req UpdateBookRequest) (Book, error)
	DeleteBook(ctx context.Context, id int64) (Book, error)
	Borrow(ctx context.Context, req BorrowRequest) (BorrowReceipt, error)
	ListBorrowLogs(ctx context.Context) ([]BorrowLog, error)
	ListUserBorrowLogs(ctx context.Context, userID int64) ([]BorrowLog, error)
}

// Repository is implemented by every storage backend. The methods of the
// Repository returned by BeginTx run inside that transaction.
type Repository interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Repository, driver.Tx, error)

	CreateBook(ctx context.Context, bookEntry Book) (Book, error)
	GetBookByID(ctx context.Context, id int64) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	UpdateBook(ctx context.Context, changes UpdateBookRequest, updatedAt time.Time) (Book, error)
	DeleteBook(ctx context.Context, id int64) (Book, error)

	// DecrementStockIfAvailable checks stock > 0 and takes one copy away as a
	// single step. When the stock is already zero it returns the unchanged book
	// together with ErrResponseOutOfStock.
	DecrementStockIfAvailable(ctx context.Context, id int64, updatedAt time.Time) (Book, error)

	AppendBorrowRecord(ctx context.Context, record BorrowRecord) (BorrowRecord, error)
	ListBorrowLogs(ctx context.Context) ([]BorrowLog, error)
	ListBorrowLogsByUser(ctx context.Context, userID int64) ([]BorrowLog, error)
}

type Notifier interface {
	BookCreated(ctx context.Context, title string, stock int) error
	BookBorrowed(ctx context.Context, title string, remainingStock int) error
}

type Service struct {
	repo                 Repository
	ntfy                 Notifier
	notificationsTimeout time.Duration
	logger               *zap.Logger
	now                  func() time.Time
	pending              sync.WaitGroup
}

func NewService(repo Repository, ntfy Notifier, notificationsTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:                 repo,
		ntfy:                 ntfy,
		notificationsTimeout: notificationsTimeout,
		logger:               logger,
		now:                  func() time.Time { return time.Now().UTC().Round(time.Millisecond) },
	}
}

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (Book, error) {
	createdAt := s.now()
	newBook := Book{
		Title:     req.Title,
		Author:    req.Author,
		Stock:     req.Stock,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	newBook, err := normalizeBook(newBook)
	if err != nil {
		return Book{}, err
	}

	storedBook, err := s.repo.CreateBook(ctx, newBook)
	if err != nil {
		return Book{}, repositoryError("CreateBook", err)
	}

	s.notify(func(ctx context.Context) error {
		return s.ntfy.BookCreated(ctx, storedBook.Title, storedBook.Stock)
	})
	return storedBook, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (Book, error) {
	b, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResponseBookNotFound) {
			return Book{}, bookNotFound(id)
		}
		return Book{}, repositoryError("GetBook", err)
	}
	return b, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, repositoryError("ListBooks", err)
	}
	return books, nil
}

/* Applies the provided fields only. Fields are validated the same way as on creation. */
func (s *Service) UpdateBook(ctx context.Context, req UpdateBookRequest) (Book, error) {
	if req.Title == nil && req.Author == nil && req.Stock == nil {
		return Book{}, ErrResponseNoUpdateFields
	}
	if req.Title != nil {
		title, err := ValidateText("Title", *req.Title)
		if err != nil {
			return Book{}, err
		}
		req.Title = &title
	}
	if req.Author != nil {
		author, err := ValidateText("Author", *req.Author)
		if err != nil {
			return Book{}, err
		}
		req.Author = &author
	}
	if req.Stock != nil && *req.Stock < 0 {
		return Book{}, validationError("Stock cannot be negative")
	}

	updatedBook, err := s.repo.UpdateBook(ctx, req, s.now())
	if err != nil {
		if errors.Is(err, ErrResponseBookNotFound) {
			return Book{}, bookNotFound(req.ID)
		}
		return Book{}, repositoryError("UpdateBook", err)
	}
	return updatedBook, nil
}

/* Deletes the book and, through the cascade, its borrow history. */
func (s *Service) DeleteBook(ctx context.Context, id int64) (Book, error) {
	deletedBook, err := s.repo.DeleteBook(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResponseBookNotFound) {
			return Book{}, bookNotFound(id)
		}
		return Book{}, repositoryError("DeleteBook", err)
	}
	s.logger.Info("book deleted with its borrow history", zap.Int64("book_id", id))
	return deletedBook, nil
}

func (s *Service) ListBorrowLogs(ctx context.Context) ([]BorrowLog, error) {
	logs, err := s.repo.ListBorrowLogs(ctx)
	if err != nil {
		return nil, repositoryError("ListBorrowLogs", err)
	}
	return logs, nil
}

func (s *Service) ListUserBorrowLogs(ctx context.Context, userID int64) ([]BorrowLog, error) {
	if userID < 1 {
		return nil, validationError("User ID must be a positive integer")
	}
	logs, err := s.repo.ListBorrowLogsByUser(ctx, userID)
	if err != nil {
		return nil, repositoryError("ListUserBorrowLogs", err)
	}
	return logs, nil
}

/* Sends a notification in the background. Delivery problems are only logged. */
func (s *Service) notify(send func(ctx context.Context) error) {
	if s.ntfy == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notificationsTimeout)
		defer cancel()
		if err := send(ctx); err != nil && !errors.Is(err, ErrNotificationsDisabled) {
			s.logger.Warn("notification not delivered", zap.Error(err))
		}
	}()
}

/* Blocks until the notifications already sent in the background are done, or until ctx ends. */
func (s *Service) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notifications: %w", ctx.Err())
	}
}

// ErrNotificationsDisabled is returned by notifiers that are switched off.
var ErrNotificationsDisabled = errors.New("notifications not enabled")

func bookNotFound(id int64) error {
	return ErrResponseBookNotFound.WithMessage(fmt.Sprintf("Book with ID %d not found", id))
}

/* Classifies an error coming out of a repository call. */
func repositoryError(call string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("timeout on call to %s: %w", call, err)
	}
	var errR pkgerrors.ErrResponse
	if errors.As(err, &errR) {
		return errR
	}
	return ErrResponseFromRespository.WithDetails(fmt.Sprintf("%s: %v", call, err))
}
