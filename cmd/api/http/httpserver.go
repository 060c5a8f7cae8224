package http

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port              int
	ReadHeaderTimeout time.Duration
}

func NewServer(config ServerConfig, h *BookHandler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", ping)
	mux.HandleFunc("/", h.root)
	mux.HandleFunc("/api", h.index)
	mux.HandleFunc("/api/", h.notFound)
	mux.HandleFunc("/api/books", h.books)
	mux.HandleFunc("/api/books/", h.bookById)
	mux.HandleFunc("/api/borrow", h.borrow)
	mux.HandleFunc("/api/borrow/logs", h.borrowLogs)
	mux.HandleFunc("/api/borrow/my-logs", h.myBorrowLogs)

	if config.ReadHeaderTimeout == 0 {
		config.ReadHeaderTimeout = 5 * time.Second
	}

	server := http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           withRequestID(withAccessLog(h.logger, withRecover(h, mux))),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(h.logger),
	}
	return &server
}

/* Tests the http server connection.  */
func ping(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if method == http.MethodGet {
		w.WriteHeader(http.StatusNoContent)
		return
	} else {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}
