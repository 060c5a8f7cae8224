package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/library-service/cmd/api/access"
	"github.com/library-service/cmd/api/book"
	"github.com/library-service/cmd/api/pkgerrors"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_serviceapi.go -package=mocks github.com/library-service/cmd/api/book ServiceAPI

const maxBodyBytes = 1 << 20

type BookHandler struct {
	bookService    book.ServiceAPI
	logger         *zap.Logger
	requestTimeout time.Duration
	diagnostics    bool
}

type HandlerConfig struct {
	RequestTimeout time.Duration
	// Diagnostics exposes the text of unclassified errors in the details field.
	Diagnostics bool
}

func NewBookHandler(bookService book.ServiceAPI, config HandlerConfig, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}
	return &BookHandler{
		bookService:    bookService,
		logger:         logger,
		requestTimeout: config.RequestTimeout,
		diagnostics:    config.Diagnostics,
	}
}

/* Bounds the request by the configured timeout. */
func (h *BookHandler) withTimeout(r *http.Request) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	return r.WithContext(ctx), cancel
}

/* Runs the identity gate for op. On failure the error envelope is already written and ok is false. */
func (h *BookHandler) authorize(op access.Operation, w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	id, err := access.Authorize(op, r.Header.Get(access.HeaderRole), r.Header.Get(access.HeaderUserID))
	if err != nil {
		h.handleError(err, w, r)
		return r, false
	}
	return r.WithContext(access.NewContext(r.Context(), id)), true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}

/* Addresses a call to "/api/books" according to the requested action.  */
func (h *BookHandler) books(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.withTimeout(r)
	defer cancel()

	method := r.Method
	switch method {
	case http.MethodGet:
		if r, ok := h.authorize(access.OpListBooks, w, r); ok {
			h.listBooks(w, r)
		}
		return
	case http.MethodPost:
		if r, ok := h.authorize(access.OpCreateBook, w, r); ok {
			h.createBook(w, r)
		}
		return
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
}

/* Addresses a call to "/api/books/(expected id here)" according to the requested action.  */
func (h *BookHandler) bookById(w http.ResponseWriter, r *http.Request) {
	rawID, _ := strings.CutPrefix(r.URL.Path, "/api/books/")
	if rawID == "" || strings.Contains(rawID, "/") {
		h.notFound(w, r)
		return
	}

	r, cancel := h.withTimeout(r)
	defer cancel()

	var op access.Operation
	var handle func(http.ResponseWriter, *http.Request, int64)
	switch r.Method {
	case http.MethodGet:
		op, handle = access.OpGetBook, h.getBookById
	case http.MethodPut:
		op, handle = access.OpUpdateBook, h.updateBook
	case http.MethodDelete:
		op, handle = access.OpDeleteBook, h.deleteBook
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		return
	}

	r, ok := h.authorize(op, w, r)
	if !ok {
		return
	}
	id, err := book.ParsePathID(rawID)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	handle(w, r, id)
}

/* Returns the stored books, newest first. */
func (h *BookHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.ListBooks(r.Context())
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, successList("Books retrieved successfully", booksToResponse(books), len(books)))
}

/* Returns the book with that specific ID. */
func (h *BookHandler) getBookById(w http.ResponseWriter, r *http.Request, id int64) {
	returnedBook, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, success("Book retrieved successfully", bookToResponse(returnedBook)))
}

/* Validates the entry, then stores the entry as a new book. */
func (h *BookHandler) createBook(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(w, r)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	reqBook, err := entryToCreateReq(entry)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	storedBook, err := h.bookService.CreateBook(r.Context(), reqBook)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusCreated, success("Book created successfully", bookToResponse(storedBook)))
}

/* Validates the provided fields, then updates the asked book. */
func (h *BookHandler) updateBook(w http.ResponseWriter, r *http.Request, id int64) {
	entry, err := decodeEntry(w, r)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	reqBook, err := entryToUpdateReq(entry, id)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	updatedBook, err := h.bookService.UpdateBook(r.Context(), reqBook)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, success("Book updated successfully", bookToResponse(updatedBook)))
}

/* Deletes the book and its borrow history. */
func (h *BookHandler) deleteBook(w http.ResponseWriter, r *http.Request, id int64) {
	deletedBook, err := h.bookService.DeleteBook(r.Context(), id)
	if err != nil {
		h.handleError(err, w, r)
		return
	}
	h.responseJSON(w, http.StatusOK, success("Book deleted successfully", bookToResponse(deletedBook)))
}

/* Decodes a JSON object keeping numbers as json.Number so the validators can tell types apart. */
func decodeEntry(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var entry map[string]any
	err := dec.Decode(&entry)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, book.ErrResponseEntryInvalidJSON.WithMessage(book.ErrResponseEntryInvalidJSON.Message + "empty body")
		}
		return nil, book.ErrResponseEntryInvalidJSON.WithMessage(book.ErrResponseEntryInvalidJSON.Message + err.Error())
	}
	if entry == nil {
		return nil, book.ErrResponseEntryInvalidJSON.WithMessage(book.ErrResponseEntryInvalidJSON.Message + "body must be a JSON object")
	}
	return entry, nil
}

/* Converts a decoded entry into a CreateBookRequest. Stock is optional and defaults to zero. */
func entryToCreateReq(entry map[string]any) (book.CreateBookRequest, error) {
	title, err := book.ValidateText("Title", entry["title"])
	if err != nil {
		return book.CreateBookRequest{}, err
	}
	author, err := book.ValidateText("Author", entry["author"])
	if err != nil {
		return book.CreateBookRequest{}, err
	}
	stock := 0
	if v := entry["stock"]; v != nil {
		stock, err = book.ValidateStock(v)
		if err != nil {
			return book.CreateBookRequest{}, err
		}
	}
	return book.CreateBookRequest{Title: title, Author: author, Stock: stock}, nil
}

/* Converts a decoded entry into an UpdateBookRequest holding only the fields that were sent. */
func entryToUpdateReq(entry map[string]any, id int64) (book.UpdateBookRequest, error) {
	req := book.UpdateBookRequest{ID: id}
	if v := entry["title"]; v != nil {
		title, err := book.ValidateText("Title", v)
		if err != nil {
			return book.UpdateBookRequest{}, err
		}
		req.Title = &title
	}
	if v := entry["author"]; v != nil {
		author, err := book.ValidateText("Author", v)
		if err != nil {
			return book.UpdateBookRequest{}, err
		}
		req.Author = &author
	}
	if v := entry["stock"]; v != nil {
		stock, err := book.ValidateStock(v)
		if err != nil {
			return book.UpdateBookRequest{}, err
		}
		req.Stock = &stock
	}
	if req.Title == nil && req.Author == nil && req.Stock == nil {
		return book.UpdateBookRequest{}, book.ErrResponseNoUpdateFields
	}
	return req, nil
}

/* Answers "/" with a short welcome. Any other unmatched path is a 404. */
func (h *BookHandler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.notFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	h.responseJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Welcome to Library System API with Geolocation",
		"documentation": "/api",
		"version":       apiVersion,
	})
}

const apiVersion = "1.0.0"

/* Lists the endpoints and the headers they expect. */
func (h *BookHandler) index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	r, ok := h.authorize(access.OpIndex, w, r)
	if !ok {
		return
	}
	h.responseJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Library System API is running",
		"version": apiVersion,
		"endpoints": map[string]map[string]string{
			"books": {
				"GET /api/books":        "Get all books (Public)",
				"GET /api/books/:id":    "Get book by ID (Public)",
				"POST /api/books":       "Create book (Admin)",
				"PUT /api/books/:id":    "Update book (Admin)",
				"DELETE /api/books/:id": "Delete book (Admin)",
			},
			"borrow": {
				"POST /api/borrow":        "Borrow a book (User)",
				"GET /api/borrow/my-logs": "Get my borrow history (User)",
				"GET /api/borrow/logs":    "Get all borrow logs (Admin)",
			},
		},
		"headers": map[string]string{
			access.HeaderRole:   "admin | user",
			access.HeaderUserID: "integer (required for user role)",
		},
	})
}

func (h *BookHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.handleError(pkgerrors.ErrResponseRouteNotFound.WithMessage(fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.RequestURI())), w, r)
}
