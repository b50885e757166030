package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

var errEmptyRequestBody = errors.New("empty request body")

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// ParseBookID converts a path parameter into a positional book id.
// Range checks happen at the service level against the loaded catalog.
func ParseBookID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid book id %q", raw)
	}
	return id, nil
}

// isFormRequest reports whether the request body is url-encoded or multipart.
func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// DecodeBookRequestBody reads the content of a book creation or update request.
// Both JSON documents and html form submissions are accepted.
func DecodeBookRequestBody(r *http.Request, book *Book) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyRequestBody
	}

	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return err
		}
		book.Name = r.PostForm.Get("name")
		book.PublicationDate = r.PostForm.Get("publication_date")
		book.Author = r.PostForm.Get("author")
		book.Category = r.PostForm.Get("category")
		return nil
	}
	return json.NewDecoder(r.Body).Decode(book)
}

// DecodeBorrowRequestBody reads the optional due date and borrower name of a
// borrow request. An empty body means no due date and no borrower.
func DecodeBorrowRequestBody(r *http.Request, req *BorrowRequest) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return err
		}
		req.DueDate = r.PostForm.Get("due_date")
		req.BorrowerName = r.PostForm.Get("borrower_name")
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ValidateBookFields checks that all descriptive fields of a book are set.
// Surrounding spaces are trimmed before the check.
func ValidateBookFields(book *Book) error {
	book.Name = strings.TrimSpace(book.Name)
	book.PublicationDate = strings.TrimSpace(book.PublicationDate)
	book.Author = strings.TrimSpace(book.Author)
	book.Category = strings.TrimSpace(book.Category)

	if len(book.Name) == 0 {
		return missingFieldError("name")
	}

	if len(book.PublicationDate) == 0 {
		return missingFieldError("publication_date")
	}

	if len(book.Author) == 0 {
		return missingFieldError("author")
	}

	if len(book.Category) == 0 {
		return missingFieldError("category")
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	if net.ParseIP(ip) != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	for _, ip := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
