package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/library-service/cmd/api/book"
	"github.com/library-service/cmd/api/pkgerrors"
	"go.uber.org/zap"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool `json:"success"`
	pkgerrors.ErrResponse
}

func success(message string, data any) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Data: data}
}

func successList(message string, data any, count int) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Count: &count, Data: data}
}

type BookResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

/*Copy the fields of a book object to an http layer struct with json tags*/
func bookToResponse(b book.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func booksToResponse(books []book.Book) []BookResponse {
	results := []BookResponse{}
	for _, b := range books {
		results = append(results, bookToResponse(b))
	}
	return results
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type BookSummaryResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type BorrowLogResponse struct {
	ID         int64                `json:"id"`
	UserID     int64                `json:"userId"`
	BookID     int64                `json:"bookId"`
	BorrowDate string               `json:"borrowDate"`
	Location   LocationResponse     `json:"location"`
	CreatedAt  time.Time            `json:"createdAt"`
	Book       *BookSummaryResponse `json:"book,omitempty"`
}

type BorrowedBookResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	RemainingStock int    `json:"remainingStock"`
}

type BorrowResponse struct {
	BorrowLog BorrowLogResponse    `json:"borrowLog"`
	Book      BorrowedBookResponse `json:"book"`
}

func recordToResponse(r book.BorrowRecord) BorrowLogResponse {
	return BorrowLogResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		BorrowDate: r.BorrowDate.Format(time.DateOnly),
		Location:   LocationResponse{Latitude: r.Latitude, Longitude: r.Longitude},
		CreatedAt:  r.CreatedAt,
	}
}

func receiptToResponse(receipt book.BorrowReceipt) BorrowResponse {
	return BorrowResponse{
		BorrowLog: recordToResponse(receipt.Record),
		Book: BorrowedBookResponse{
			ID:             receipt.Book.ID,
			Title:          receipt.Book.Title,
			Author:         receipt.Book.Author,
			RemainingStock: receipt.Book.Stock,
		},
	}
}

func borrowLogsToResponse(logs []book.BorrowLog) []BorrowLogResponse {
	results := []BorrowLogResponse{}
	for _, l := range logs {
		res := recordToResponse(l.BorrowRecord)
		res.Book = &BookSummaryResponse{ID: l.Book.ID, Title: l.Book.Title, Author: l.Book.Author}
		results = append(results, res)
	}
	return results
}

/*Writes a JSON response into a http.ResponseWriter. */
func (h *BookHandler) responseJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		h.logger.Error("encoding response", zap.Error(err))
	}
}

var statusByKind = map[pkgerrors.Kind]int{
	pkgerrors.KindMissingHeader:      http.StatusBadRequest,
	pkgerrors.KindInvalidRole:        http.StatusBadRequest,
	pkgerrors.KindInvalidIdentity:    http.StatusBadRequest,
	pkgerrors.KindValidation:         http.StatusBadRequest,
	pkgerrors.KindOutOfStock:         http.StatusBadRequest,
	pkgerrors.KindForbidden:          http.StatusForbidden,
	pkgerrors.KindNotFound:           http.StatusNotFound,
	pkgerrors.KindConflict:           http.StatusConflict,
	pkgerrors.KindRequestTimeout:     http.StatusGatewayTimeout,
	pkgerrors.KindTransactionFailure: http.StatusInternalServerError,
	pkgerrors.KindInternal:           http.StatusInternalServerError,
}

/* Maps any error coming out of the service to its status code and error envelope. */
func (h *BookHandler) handleError(err error, w http.ResponseWriter, r *http.Request) {
	var errR pkgerrors.ErrResponse
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errR = pkgerrors.ErrResponseRequestTimeout.WithMessage(pkgerrors.ErrResponseRequestTimeout.Message + context.DeadlineExceeded.Error())
	case errors.Is(err, context.Canceled):
		errR = pkgerrors.ErrResponseRequestTimeout.WithMessage(pkgerrors.ErrResponseRequestTimeout.Message + context.Canceled.Error())
	case errors.As(err, &errR):
	default:
		errR = pkgerrors.ErrResponseInternal
	}

	status, ok := statusByKind[errR.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("kind", string(errR.Kind)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
		if h.diagnostics {
			if errR.Details == nil {
				errR.Details = err.Error()
			}
		} else {
			errR.Details = nil
		}
	} else {
		h.logger.Debug("request rejected", fields...)
	}

	h.responseJSON(w, status, ErrorResponse{Success: false, ErrResponse: errR})
}
