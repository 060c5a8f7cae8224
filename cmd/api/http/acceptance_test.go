package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/library-service/cmd/api/book"
	bookhttp "github.com/library-service/cmd/api/http"
	"github.com/library-service/cmd/api/inmemory"
)

type borrowResult struct {
	status int
	body   map[string]any
}

type libraryTestContext struct {
	store   *inmemory.InMemoryStore
	server  *http.Server
	book    book.Book
	results []borrowResult
}

func (c *libraryTestContext) reset() error {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		return err
	}
	service := book.NewService(store, nil, time.Second, nil)
	handler := bookhttp.NewBookHandler(service, bookhttp.HandlerConfig{RequestTimeout: 5 * time.Second}, nil)

	c.store = store
	c.server = bookhttp.NewServer(bookhttp.ServerConfig{}, handler)
	c.book = book.Book{}
	c.results = nil
	return nil
}

func (c *libraryTestContext) send(method, path, body string, h headers) borrowResult {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range h {
		request.Header.Set(k, v)
	}
	response := httptest.NewRecorder()
	c.server.Handler.ServeHTTP(response, request)

	var decoded map[string]any
	_ = json.Unmarshal(response.Body.Bytes(), &decoded)
	return borrowResult{status: response.Code, body: decoded}
}

func (c *libraryTestContext) borrow(role, userID string, bookID int64, latitude, longitude float64) borrowResult {
	h := headers{"x-user-role": role}
	if userID != "" {
		h["x-user-id"] = userID
	}
	body := fmt.Sprintf(`{"bookId": %d, "latitude": %v, "longitude": %v}`, bookID, latitude, longitude)
	return c.send(http.MethodPost, "/api/borrow", body, h)
}

func (c *libraryTestContext) aBookWithStock(title, author string, stock int) error {
	created, err := c.store.CreateBook(context.Background(), book.Book{
		Title:     title,
		Author:    author,
		Stock:     stock,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	c.book = created
	return err
}

func (c *libraryTestContext) usersBorrowAtTheSameTime(first, second int) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	start := make(chan struct{})
	for _, user := range []int{first, second} {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			<-start
			res := c.borrow("user", fmt.Sprint(user), c.book.ID, 0, 0)
			mu.Lock()
			c.results = append(c.results, res)
			mu.Unlock()
		}(user)
	}
	close(start)
	wg.Wait()
	return nil
}

func (c *libraryTestContext) callerBorrowsBook(role, userID string, bookID int64, latitude, longitude float64) error {
	c.results = append(c.results, c.borrow(role, userID, bookID, latitude, longitude))
	return nil
}

func (c *libraryTestContext) callerBorrowsThatBook(role, userID string, latitude, longitude float64) error {
	return c.callerBorrowsBook(role, userID, c.book.ID, latitude, longitude)
}

func (c *libraryTestContext) exactlyOneBorrowSucceeds(remaining int) error {
	var succeeded []borrowResult
	for _, res := range c.results {
		if res.status == http.StatusCreated {
			succeeded = append(succeeded, res)
		}
	}
	if len(succeeded) != 1 {
		return fmt.Errorf("expected one successful borrow, got %d", len(succeeded))
	}
	data, _ := succeeded[0].body["data"].(map[string]any)
	borrowed, _ := data["book"].(map[string]any)
	if got := borrowed["remainingStock"]; got != float64(remaining) {
		return fmt.Errorf("expected remaining stock %d, got %v", remaining, got)
	}
	return nil
}

func (c *libraryTestContext) oneBorrowFailsWith(status int, kind string) error {
	for _, res := range c.results {
		if res.status == status && res.body["error"] == kind {
			return nil
		}
	}
	return fmt.Errorf("no borrow failed with %d %s", status, kind)
}

func (c *libraryTestContext) lastResult() (borrowResult, error) {
	if len(c.results) == 0 {
		return borrowResult{}, fmt.Errorf("no request was sent")
	}
	return c.results[len(c.results)-1], nil
}

func (c *libraryTestContext) theResponseStatusIs(status int) error {
	res, err := c.lastResult()
	if err != nil {
		return err
	}
	if res.status != status {
		return fmt.Errorf("expected status %d, got %d: %v", status, res.status, res.body)
	}
	return nil
}

func (c *libraryTestContext) theResponseStatusIsWithError(status int, kind string) error {
	if err := c.theResponseStatusIs(status); err != nil {
		return err
	}
	res, _ := c.lastResult()
	if res.body["success"] != false || res.body["error"] != kind {
		return fmt.Errorf("expected error %s, got %v", kind, res.body)
	}
	return nil
}

func (c *libraryTestContext) theLedgerHolds(count int) error {
	logs, err := c.store.ListBorrowLogs(context.Background())
	if err != nil {
		return err
	}
	if len(logs) != count {
		return fmt.Errorf("expected %d ledger records, got %d", count, len(logs))
	}
	return nil
}

func (c *libraryTestContext) theBookStockIs(stock int) error {
	stored, err := c.store.GetBookByID(context.Background(), c.book.ID)
	if err != nil {
		return err
	}
	if stored.Stock != stock {
		return fmt.Errorf("expected stock %d, got %d", stock, stored.Stock)
	}
	return nil
}

func (c *libraryTestContext) userHasRecordsInHistory(userID, count int) error {
	res := c.send(http.MethodGet, "/api/borrow/my-logs", "", headers{"x-user-role": "user", "x-user-id": fmt.Sprint(userID)})
	if res.status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", res.status)
	}
	if got := res.body["count"]; got != float64(count) {
		return fmt.Errorf("expected %d records, got %v", count, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &libraryTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^a book "([^"]*)" by "([^"]*)" with stock (\d+)$`, tc.aBookWithStock)

	// When steps
	ctx.Step(`^users (\d+) and (\d+) borrow that book at the same time$`, tc.usersBorrowAtTheSameTime)
	ctx.Step(`^a caller with role "([^"]*)" and user id "([^"]*)" borrows book (\d+) at (-?[\d.]+), (-?[\d.]+)$`, tc.callerBorrowsBook)
	ctx.Step(`^a caller with role "([^"]*)" and user id "([^"]*)" borrows that book at (-?[\d.]+), (-?[\d.]+)$`, tc.callerBorrowsThatBook)

	// Then steps
	ctx.Step(`^exactly one borrow succeeds with remaining stock (\d+)$`, tc.exactlyOneBorrowSucceeds)
	ctx.Step(`^one borrow fails with status (\d+) and error "([^"]*)"$`, tc.oneBorrowFailsWith)
	ctx.Step(`^the response status is (\d+)$`, tc.theResponseStatusIs)
	ctx.Step(`^the response status is (\d+) with error "([^"]*)"$`, tc.theResponseStatusIsWithError)
	ctx.Step(`^the ledger holds (\d+) records?$`, tc.theLedgerHolds)
	ctx.Step(`^the book stock is (\d+)$`, tc.theBookStockIs)
	ctx.Step(`^user (\d+) has (\d+) records? in their history$`, tc.userHasRecordsInHistory)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/borrow.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
