package book_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/library-service/cmd/api/book"
	bookmock "github.com/library-service/cmd/api/book/mocks"
	"github.com/matryer/is"
	gomock "go.uber.org/mock/gomock"
)

var ctx context.Context = context.Background()

var notificationsTimeout = 1 * time.Second

func TestCreateBook(t *testing.T) {
	t.Run("creates a book without errors", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mockNtfy := bookmock.NewMockNotifier(ctrl)
		mS := book.NewService(mockRepo, mockNtfy, notificationsTimeout, nil)

		reqBook := book.CreateBookRequest{
			Title:  "Service tester book",
			Author: "Tester",
			Stock:  99,
		}

		wg := sync.WaitGroup{}
		wg.Add(1)
		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, b book.Book) (book.Book, error) {
			is.Equal(b.ID, int64(0))
			is.Equal(b.Title, reqBook.Title)
			is.Equal(b.Author, reqBook.Author)
			is.Equal(b.Stock, reqBook.Stock)
			is.True(b.CreatedAt.Compare(time.Now().Round(time.Millisecond)) <= 0)
			is.Equal(b.CreatedAt, b.UpdatedAt)
			b.ID = 7
			return b, nil
		})
		mockNtfy.EXPECT().BookCreated(gomock.Any(), reqBook.Title, reqBook.Stock).DoAndReturn(func(_ context.Context, _ string, _ int) error {
			defer wg.Done()
			return book.ErrNotificationsDisabled
		})

		createdBook, err := mS.CreateBook(ctx, reqBook)
		is.NoErr(err)
		is.Equal(createdBook.ID, int64(7))
		is.Equal(createdBook.Title, reqBook.Title)
		is.Equal(createdBook.Stock, reqBook.Stock)

		wg.Wait()
	})

	t.Run("rejects invalid books before storage", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		for _, reqBook := range []book.CreateBookRequest{
			{Title: "", Author: "A", Stock: 1},
			{Title: "T", Author: "   ", Stock: 1},
			{Title: strings.Repeat("x", book.TextMaxLength+1), Author: "A", Stock: 1},
			{Title: "T", Author: "A", Stock: -1},
		} {
			_, err := mS.CreateBook(ctx, reqBook)
			is.True(errors.Is(err, book.ErrResponseValidation))
		}
	})

	t.Run("stores title and author trimmed", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, b book.Book) (book.Book, error) {
			is.Equal(b.Title, "Dune")
			is.Equal(b.Author, "Frank Herbert")
			b.ID = 1
			return b, nil
		})

		createdBook, err := mS.CreateBook(ctx, book.CreateBookRequest{Title: "  Dune\t", Author: " Frank Herbert ", Stock: 2})
		is.NoErr(err)
		is.Equal(createdBook.Title, "Dune")
		is.Equal(createdBook.Author, "Frank Herbert")
	})

	t.Run("duplicate entry is reported as a conflict", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(book.Book{}, book.ErrResponseConflict)

		_, err := mS.CreateBook(ctx, book.CreateBookRequest{Title: "T", Author: "A"})
		is.True(errors.Is(err, book.ErrResponseConflict))
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		reqBook := book.UpdateBookRequest{
			ID:    3,
			Title: toPointer("  Updated service tester book  "),
		}

		mockRepo.EXPECT().UpdateBook(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, changes book.UpdateBookRequest, updatedAt time.Time) (book.Book, error) {
			is.Equal(changes.ID, reqBook.ID)
			is.Equal(*changes.Title, "Updated service tester book")
			is.Equal(changes.Author, nil)
			is.Equal(changes.Stock, nil)
			is.True(updatedAt.Compare(time.Now().Round(time.Millisecond)) <= 0)
			return book.Book{ID: changes.ID, Title: *changes.Title, Author: "Unchanged", Stock: 4, UpdatedAt: updatedAt}, nil
		})

		updatedBook, err := mS.UpdateBook(ctx, reqBook)
		is.NoErr(err)
		is.Equal(updatedBook.ID, reqBook.ID)
		is.Equal(updatedBook.Title, "Updated service tester book")
		is.Equal(updatedBook.Author, "Unchanged")
	})

	t.Run("no fields to update", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		_, err := mS.UpdateBook(ctx, book.UpdateBookRequest{ID: 3})
		is.True(errors.Is(err, book.ErrResponseNoUpdateFields))
		is.Equal(err.Error(), "No valid fields provided for update")
	})

	t.Run("negative stock is rejected", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		_, err := mS.UpdateBook(ctx, book.UpdateBookRequest{ID: 3, Stock: toPointer(-2)})
		is.True(errors.Is(err, book.ErrResponseValidation))
	})

	t.Run("missing book", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().UpdateBook(gomock.Any(), gomock.Any(), gomock.Any()).Return(book.Book{}, book.ErrResponseBookNotFound)

		_, err := mS.UpdateBook(ctx, book.UpdateBookRequest{ID: 44, Stock: toPointer(2)})
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		is.Equal(err.Error(), "Book with ID 44 not found")
	})
}

func TestDeleteBook(t *testing.T) {
	t.Run("deletes a book without errors", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().DeleteBook(gomock.Any(), int64(5)).Return(book.Book{ID: 5, Title: "Gone"}, nil)

		deletedBook, err := mS.DeleteBook(ctx, 5)
		is.NoErr(err)
		is.Equal(deletedBook.Title, "Gone")
	})

	t.Run("missing book", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().DeleteBook(gomock.Any(), int64(5)).Return(book.Book{}, book.ErrResponseBookNotFound)

		_, err := mS.DeleteBook(ctx, 5)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})
}

func TestGetBook(t *testing.T) {
	t.Run("Gets a book by ID without errors", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().GetBookByID(gomock.Any(), int64(1)).Return(book.Book{ID: 1}, nil)

		b, err := mS.GetBook(ctx, 1)
		is.NoErr(err)
		is.Equal(b.ID, int64(1))
	})

	t.Run("missing book", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().GetBookByID(gomock.Any(), int64(9)).Return(book.Book{}, book.ErrResponseBookNotFound)

		_, err := mS.GetBook(ctx, 9)
		is.Equal(err.Error(), "Book with ID 9 not found")
	})
}

func TestListBooks(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := bookmock.NewMockRepository(ctrl)
	mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

	t.Run("lists stored books without errors", func(t *testing.T) {
		results := []book.Book{{ID: 2}, {ID: 1}}
		mockRepo.EXPECT().ListBooks(gomock.Any()).Return(results, nil)

		books, err := mS.ListBooks(ctx)
		is.NoErr(err)
		is.Equal(books, results)
	})

	t.Run("expected error from database", func(t *testing.T) {
		dbErr := errors.New("fake error from database")
		errRepo := book.ErrResponseFromRespository.WithDetails("ListBooks: " + dbErr.Error())

		mockRepo.EXPECT().ListBooks(gomock.Any()).Return(nil, dbErr)

		books, err := mS.ListBooks(ctx)
		is.Equal(books, nil)
		is.Equal(err, errRepo)
		is.Equal(err.Error(), book.ErrResponseFromRespository.Message)
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		mockRepo.EXPECT().ListBooks(gomock.Any()).Return(nil, context.DeadlineExceeded)

		_, err := mS.ListBooks(ctx)
		is.Equal(err.Error(), "timeout on call to ListBooks: "+context.DeadlineExceeded.Error())
		is.True(errors.Is(err, context.DeadlineExceeded))
	})
}

func TestListBorrowLogs(t *testing.T) {
	t.Run("lists every user's records", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		logs := []book.BorrowLog{
			{BorrowRecord: book.BorrowRecord{ID: 2, UserID: 11}},
			{BorrowRecord: book.BorrowRecord{ID: 1, UserID: 10}},
		}
		mockRepo.EXPECT().ListBorrowLogs(gomock.Any()).Return(logs, nil)

		got, err := mS.ListBorrowLogs(ctx)
		is.NoErr(err)
		is.Equal(got, logs)
	})

	t.Run("lists only the caller's records", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		mockRepo.EXPECT().ListBorrowLogsByUser(gomock.Any(), int64(10)).Return([]book.BorrowLog{}, nil)

		got, err := mS.ListUserBorrowLogs(ctx, 10)
		is.NoErr(err)
		is.Equal(len(got), 0)
	})

	t.Run("invalid user id", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mS := book.NewService(mockRepo, nil, notificationsTimeout, nil)

		_, err := mS.ListUserBorrowLogs(ctx, 0)
		is.True(errors.Is(err, book.ErrResponseValidation))
	})
}

func TestWaitNotifications(t *testing.T) {
	t.Run("waits for notifications in flight", func(t *testing.T) {
		is := is.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := bookmock.NewMockRepository(ctrl)
		mockNtfy := bookmock.NewMockNotifier(ctrl)
		mS := book.NewService(mockRepo, mockNtfy, notificationsTimeout, nil)

		release := make(chan struct{})
		var delivered bool
		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(book.Book{ID: 1, Title: "Dune", Stock: 1}, nil)
		mockNtfy.EXPECT().BookCreated(gomock.Any(), "Dune", 1).DoAndReturn(func(_ context.Context, _ string, _ int) error {
			<-release
			delivered = true
			return nil
		})

		_, err := mS.CreateBook(ctx, book.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Stock: 1})
		is.NoErr(err)

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err = mS.WaitNotifications(waitCtx)
		is.True(errors.Is(err, context.DeadlineExceeded))

		close(release)
		is.NoErr(mS.WaitNotifications(ctx))
		is.True(delivered)
	})

	t.Run("returns at once when nothing is pending", func(t *testing.T) {
		is := is.New(t)
		mS := book.NewService(nil, nil, notificationsTimeout, nil)

		is.NoErr(mS.WaitNotifications(ctx))
	})
}

func TestDateOf(t *testing.T) {
	is := is.New(t)

	jakarta := time.FixedZone("WIB", 7*60*60)
	got := book.DateOf(time.Date(2024, 3, 2, 3, 30, 0, 0, jakarta))
	is.Equal(got, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
}

func toPointer[T any](v T) *T {
	return &v
}
