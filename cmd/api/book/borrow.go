package book

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// BorrowState tracks how far a single borrow attempt got. Rejected and Aborted
// are terminal and leave storage exactly as it was.
type BorrowState int

const (
	BorrowStarted BorrowState = iota
	BorrowValidating
	BorrowLocking
	BorrowDecremented
	BorrowLogged
	BorrowCommitted
	BorrowRejected
	BorrowAborted
)

var borrowStateNames = map[BorrowState]string{
	BorrowStarted:     "Started",
	BorrowValidating:  "Validating",
	BorrowLocking:     "Locking",
	BorrowDecremented: "Decremented",
	BorrowLogged:      "Logged",
	BorrowCommitted:   "Committed",
	BorrowRejected:    "Rejected",
	BorrowAborted:     "Aborted",
}

func (st BorrowState) String() string {
	if name, ok := borrowStateNames[st]; ok {
		return name
	}
	return fmt.Sprintf("BorrowState(%d)", int(st))
}

/* Borrows one copy: decrement the stock and append a ledger record, both or neither. */
func (s *Service) Borrow(ctx context.Context, req BorrowRequest) (receipt BorrowReceipt, err error) {
	state := BorrowStarted
	defer func() {
		fields := []zap.Field{
			zap.Stringer("state", state),
			zap.Int64("user_id", req.UserID),
			zap.Int64("book_id", req.BookID),
		}
		if err != nil {
			s.logger.Info("borrow attempt failed", append(fields, zap.Error(err))...)
			return
		}
		s.logger.Info("borrow attempt committed", append(fields, zap.Int64("record_id", receipt.Record.ID))...)
	}()

	state = BorrowValidating
	if err := ValidateBorrowRequest(req); err != nil {
		state = BorrowRejected
		return BorrowReceipt{}, err
	}

	state = BorrowLocking
	txRepo, tx, err := s.repo.BeginTx(ctx, nil)
	if err != nil {
		state = BorrowAborted
		return BorrowReceipt{}, transactionError(err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	now := s.now()
	updatedBook, err := txRepo.DecrementStockIfAvailable(ctx, req.BookID, now)
	if err != nil {
		state = BorrowAborted
		switch {
		case errors.Is(err, ErrResponseBookNotFound):
			return BorrowReceipt{}, bookNotFound(req.BookID)
		case errors.Is(err, ErrResponseOutOfStock):
			return BorrowReceipt{}, ErrResponseOutOfStock.WithMessage(fmt.Sprintf("Book %q is currently out of stock", updatedBook.Title))
		default:
			return BorrowReceipt{}, transactionError(err)
		}
	}
	state = BorrowDecremented

	record, err := txRepo.AppendBorrowRecord(ctx, BorrowRecord{
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: DateOf(now),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CreatedAt:  now,
	})
	if err != nil {
		state = BorrowAborted
		return BorrowReceipt{}, transactionError(err)
	}
	state = BorrowLogged

	if err := ctx.Err(); err != nil {
		state = BorrowAborted
		return BorrowReceipt{}, fmt.Errorf("borrow abandoned before commit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		state = BorrowAborted
		return BorrowReceipt{}, transactionError(err)
	}
	state = BorrowCommitted

	s.notify(func(ctx context.Context) error {
		return s.ntfy.BookBorrowed(ctx, updatedBook.Title, updatedBook.Stock)
	})
	return BorrowReceipt{Book: updatedBook, Record: record}, nil
}

/* Storage failures inside the borrow scope. Context errors keep their identity so the caller can report a timeout. */
func transactionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("borrow transaction: %w", err)
	}
	if errors.Is(err, ErrResponseConflict) || errors.Is(err, ErrResponseInvalidReference) {
		return err
	}
	return ErrResponseTransactionFailed.WithDetails(err.Error())
}
