package http

import (
	"net/http"

	"github.com/library-service/cmd/api/access"
	"github.com/library-service/cmd/api/book"
)

/* Addresses a call to "/api/borrow".  */
func (h *BookHandler) borrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r, cancel := h.withTimeout(r)
	defer cancel()

	r, ok := h.authorize(access.OpBorrow, w, r)
	if !ok {
		return
	}
	h.borrowBook(w, r)
}

/* Addresses a call to "/api/borrow/logs".  */
func (h *BookHandler) borrowLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	r, cancel := h.withTimeout(r)
	defer cancel()

	r, ok := h.authorize(access.OpListBorrowLogs, w, r)
	if !ok {
		return
	}

	logs, err := h.bookService.ListBorrowLogs(r.Context())
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, successList("Borrow logs retrieved successfully", borrowLogsToResponse(logs), len(logs)))
}

/* Addresses a call to "/api/borrow/my-logs".  */
func (h *BookHandler) myBorrowLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	r, cancel := h.withTimeout(r)
	defer cancel()

	r, ok := h.authorize(access.OpListMyBorrowLogs, w, r)
	if !ok {
		return
	}
	id, _ := access.FromContext(r.Context())

	logs, err := h.bookService.ListUserBorrowLogs(r.Context(), id.UserID)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, successList("Your borrow logs retrieved successfully", borrowLogsToResponse(logs), len(logs)))
}

/* Validates the entry, then runs the borrow transaction for the caller. */
func (h *BookHandler) borrowBook(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(w, r)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	id, _ := access.FromContext(r.Context())
	req, err := entryToBorrowReq(entry, id.UserID)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	receipt, err := h.bookService.Borrow(r.Context(), req)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusCreated, success("Book borrowed successfully", receiptToResponse(receipt)))
}

/* Checks bookId, latitude and longitude in that order. */
func entryToBorrowReq(entry map[string]any, userID int64) (book.BorrowRequest, error) {
	bookID, err := book.ValidateID("Book ID", entry["bookId"])
	if err != nil {
		return book.BorrowRequest{}, err
	}
	latitude, err := book.ValidateLatitude(entry["latitude"])
	if err != nil {
		return book.BorrowRequest{}, err
	}
	longitude, err := book.ValidateLongitude(entry["longitude"])
	if err != nil {
		return book.BorrowRequest{}, err
	}
	return book.BorrowRequest{
		UserID:    userID,
		BookID:    bookID,
		Latitude:  latitude,
		Longitude: longitude,
	}, nil
}
