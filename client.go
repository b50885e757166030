package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIClientError is returned when the server answers with an error envelope.
type APIClientError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIClientError) Error() string {
	return fmt.Sprintf("server replied %d: %s", e.Status, e.Message)
}

// envelope mirrors APIResponse and APIError with a deferred payload.
type envelope struct {
	RequestID string          `json:"requestid"`
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Total     *int            `json:"total,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// CatalogClient talks to the catalog json api.
type CatalogClient struct {
	logger  *zap.Logger
	baseURL *url.URL
	client  *http.Client
}

// NewCatalogClient provides a client for the api served at baseURL.
func NewCatalogClient(logger *zap.Logger, baseURL string, httpClient *http.Client) (*CatalogClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CatalogClient{logger: logger, baseURL: u, client: httpClient}, nil
}

func bookPath(id int, action string) string {
	p := "/v1/books/" + strconv.Itoa(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// do sends the request and decodes the envelope payload into out when not nil.
func (c *CatalogClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := catalogJSON.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api call", zap.String("request.method", method), zap.String("request.url", u.String()))
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach the api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read the api response: %w", err)
	}

	var env envelope
	if err = catalogJSON.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIClientError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("failed to decode the api response: %w", err)
	}
	c.logger.Debug("api reply", zap.String("request.id", env.RequestID), zap.Int("response.status", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIClientError{Status: resp.StatusCode, Message: env.Message, RequestID: env.RequestID}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err = catalogJSON.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode the api payload: %w", err)
	}
	return nil
}

// List fetches the books matching the filter.
func (c *CatalogClient) List(ctx context.Context, filter BookFilter) ([]BookEntry, error) {
	books := []BookEntry{}
	err := c.do(ctx, http.MethodGet, "/v1/books", filter.Query(), nil, &books)
	return books, err
}

// Get fetches a single book.
func (c *CatalogClient) Get(ctx context.Context, id int) (BookEntry, error) {
	var entry BookEntry
	err := c.do(ctx, http.MethodGet, bookPath(id, ""), nil, nil, &entry)
	return entry, err
}

// Add creates a new book.
func (c *CatalogClient) Add(ctx context.Context, book Book) (BookEntry, error) {
	var entry BookEntry
	err := c.do(ctx, http.MethodPost, "/v1/books", nil, book, &entry)
	return entry, err
}

// Update replaces the descriptive fields of a book.
func (c *CatalogClient) Update(ctx context.Context, id int, book Book) (BookEntry, error) {
	var entry BookEntry
	err := c.do(ctx, http.MethodPut, bookPath(id, ""), nil, book, &entry)
	return entry, err
}

// Delete removes a book and returns it.
func (c *CatalogClient) Delete(ctx context.Context, id int) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodDelete, bookPath(id, ""), nil, nil, &book)
	return book, err
}

// Borrow lends a book.
func (c *CatalogClient) Borrow(ctx context.Context, id int, req BorrowRequest) (BookEntry, error) {
	var entry BookEntry
	err := c.do(ctx, http.MethodPost, bookPath(id, "borrow"), nil, req, &entry)
	return entry, err
}

// Return brings back a book.
func (c *CatalogClient) Return(ctx context.Context, id int) (BookEntry, error) {
	var entry BookEntry
	err := c.do(ctx, http.MethodPost, bookPath(id, "return"), nil, nil, &entry)
	return entry, err
}
