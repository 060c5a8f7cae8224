package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/library-service/cmd/api/book"
)

const (
	topicBookCreated  = "/book_created"
	topicBookBorrowed = "/book_borrowed"
)

type ErrNotificationFailed struct {
	Topic      string
	StatusCode int
}

func (e ErrNotificationFailed) Error() string {
	return fmt.Sprintf("ntfy topic %s answered with status %d", e.Topic, e.StatusCode)
}

func NewErrNotificationFailed(topic string, statusCode int) ErrNotificationFailed {
	return ErrNotificationFailed{Topic: topic, StatusCode: statusCode}
}

// Ntfy posts plain text messages to ntfy topics under baseURL.
type Ntfy struct {
	baseURL string
	enabled bool
	client  *http.Client
}

func NewNtfy(enableNotifications bool, notificationsBaseURL string, client *http.Client) *Ntfy {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Ntfy{
		baseURL: strings.TrimRight(notificationsBaseURL, "/"),
		enabled: enableNotifications,
		client:  client,
	}
}

func (ntf *Ntfy) BookCreated(ctx context.Context, title string, stock int) error {
	return ntf.publish(ctx, topicBookCreated, fmt.Sprintf("New book created:\nTitle: %s\nStock: %d", title, stock))
}

func (ntf *Ntfy) BookBorrowed(ctx context.Context, title string, remainingStock int) error {
	return ntf.publish(ctx, topicBookBorrowed, fmt.Sprintf("Book borrowed:\nTitle: %s\nRemaining stock: %d", title, remainingStock))
}

func (ntf *Ntfy) publish(ctx context.Context, topic, message string) error {
	if !ntf.enabled {
		return book.ErrNotificationsDisabled
	}

	url := ntf.baseURL + topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("error delivering message to topic (%s): %w", url, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := ntf.client.Do(req)
	if err != nil {
		return fmt.Errorf("error delivering message to topic (%s): %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NewErrNotificationFailed(url, resp.StatusCode)
	}
	return nil
}
