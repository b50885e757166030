package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

type MockCatalogStore struct {
	LoadFunc  func(ctx context.Context) ([]Book, error)
	SaveFunc  func(ctx context.Context, books []Book) error
	CloseFunc func() error
}

// Load mocks the behavior of reading the catalog document.
func (m *MockCatalogStore) Load(ctx context.Context) ([]Book, error) {
	return m.LoadFunc(ctx)
}

// Save mocks the behavior of writing the catalog document.
func (m *MockCatalogStore) Save(ctx context.Context, books []Book) error {
	return m.SaveFunc(ctx, books)
}

// Close mocks the store release.
func (m *MockCatalogStore) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

// memoryCatalog keeps a copy of the saved catalog and counts saves.
type memoryCatalog struct {
	mu    sync.Mutex
	books []Book
	saves int
}

// newMemoryStore returns a mocked store backed by an in-memory copy of books.
func newMemoryStore(books ...Book) (*MockCatalogStore, *memoryCatalog) {
	mem := &memoryCatalog{books: append([]Book{}, books...)}
	return &MockCatalogStore{
		LoadFunc: func(ctx context.Context) ([]Book, error) {
			mem.mu.Lock()
			defer mem.mu.Unlock()
			return append([]Book{}, mem.books...), nil
		},
		SaveFunc: func(ctx context.Context, books []Book) error {
			mem.mu.Lock()
			defer mem.mu.Unlock()
			mem.books = append([]Book{}, books...)
			mem.saves++
			return nil
		},
	}, mem
}

func (mem *memoryCatalog) snapshot() []Book {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return append([]Book{}, mem.books...)
}

func (mem *memoryCatalog) savesCount() int {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.saves
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format
// and to `02.07.2023` in the catalog date layout.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

var (
	bookDune    = Book{Name: "Dune", Author: "Frank Herbert", PublicationDate: "1965", Category: "Fiction"}
	bookCosmos  = Book{Name: "Cosmos", Author: "Carl Sagan", PublicationDate: "1980", Category: "Science"}
	bookSapiens = Book{
		Name:            "Sapiens",
		Author:          "Yuval Noah Harari",
		PublicationDate: "2011",
		Category:        "History",
		Borrowed:        true,
		BorrowDate:      "20.06.2023",
		DueDate:         "01.07.2023",
		BorrowerName:    "Alice",
	}
)

// newTestAPIHandler wires an APIHandler over an in-memory catalog.
func newTestAPIHandler(books ...Book) (*APIHandler, *memoryCatalog) {
	store, mem := newMemoryStore(books...)
	clock := NewMockClocker()
	cs := NewCatalogService(zap.NewNop(), clock, store, nil)
	api := NewAPIHandler(
		zap.NewNop(),
		&Config{OpsEndpointsEnable: true, Storage: StorageConfig{Driver: StorageDriverFile}},
		&Statistics{started: clock.Now()},
		clock,
		NewMockUIDHandler("test", true),
		NewMetrics(),
		cs,
	)
	return api, mem
}
