package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var _ CatalogServiceProvider = (*CatalogService)(nil) // ensure CatalogService implements CatalogServiceProvider.

// CatalogServiceProvider defines the operations exposed to the presentation adapters.
type CatalogServiceProvider interface {
	List(ctx context.Context, filter BookFilter) ([]BookEntry, error)
	GetOne(ctx context.Context, id int) (Book, error)
	Add(ctx context.Context, book Book) (BookEntry, error)
	Update(ctx context.Context, id int, book Book) (Book, error)
	Delete(ctx context.Context, id int) (Book, error)
	Borrow(ctx context.Context, id int, req BorrowRequest) (Book, error)
	Return(ctx context.Context, id int) (Book, error)
}

// CatalogService runs every operation as a full load, mutate and save
// cycle over the store. Nothing is kept in memory between calls. The
// mutex only serializes callers sharing this instance.
type CatalogService struct {
	logger  *zap.Logger
	clock   Clocker
	storage CatalogStore
	metrics *Metrics
	mu      sync.Mutex
}

func NewCatalogService(logger *zap.Logger, clock Clocker, storage CatalogStore, metrics *Metrics) *CatalogService {
	return &CatalogService{
		logger:  logger,
		clock:   clock,
		storage: storage,
		metrics: metrics,
	}
}

func (cs *CatalogService) today() string {
	return Today(cs.clock)
}

// List returns the books matching the filter in catalog order.
func (cs *CatalogService) List(ctx context.Context, filter BookFilter) ([]BookEntry, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBooks(books, filter, cs.today()), nil
}

// GetOne returns the book at the given position.
func (cs *CatalogService) GetOne(ctx context.Context, id int) (Book, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if !isValidPosition(books, id) {
		return Book{}, ErrBookNotFound
	}
	return books[id], nil
}

// Add appends a new available book to the end of the catalog.
func (cs *CatalogService) Add(ctx context.Context, book Book) (BookEntry, error) {
	if err := ValidateBookFields(&book); err != nil {
		return BookEntry{}, err
	}
	book = Book{
		Name:            book.Name,
		Author:          book.Author,
		PublicationDate: book.PublicationDate,
		Category:        book.Category,
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return BookEntry{}, err
	}
	books = append(books, book)
	if err = cs.storage.Save(ctx, books); err != nil {
		return BookEntry{}, err
	}
	cs.metrics.IncCatalogOperation("create")
	return BookEntry{ID: len(books) - 1, Book: book}, nil
}

// Update replaces the descriptive fields of a book. Lending details are kept.
func (cs *CatalogService) Update(ctx context.Context, id int, book Book) (Book, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if !isValidPosition(books, id) {
		return Book{}, ErrBookNotFound
	}
	if err = ValidateBookFields(&book); err != nil {
		return Book{}, err
	}

	current := &books[id]
	current.Name = book.Name
	current.Author = book.Author
	current.PublicationDate = book.PublicationDate
	current.Category = book.Category
	if err = cs.storage.Save(ctx, books); err != nil {
		return Book{}, err
	}
	cs.metrics.IncCatalogOperation("update")
	return *current, nil
}

// Delete removes the book at the given position. Every following
// book moves one position down.
func (cs *CatalogService) Delete(ctx context.Context, id int) (Book, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if !isValidPosition(books, id) {
		return Book{}, ErrBookNotFound
	}

	deleted := books[id]
	books = append(books[:id], books[id+1:]...)
	if err = cs.storage.Save(ctx, books); err != nil {
		return Book{}, err
	}
	cs.metrics.IncCatalogOperation("delete")
	return deleted, nil
}

// Borrow lends an available book.
func (cs *CatalogService) Borrow(ctx context.Context, id int, req BorrowRequest) (Book, error) {
	return cs.transition(ctx, id, "borrow", func(b *Book) error {
		return Borrow(b, req, cs.today())
	})
}

// Return brings back a borrowed book.
func (cs *CatalogService) Return(ctx context.Context, id int) (Book, error) {
	return cs.transition(ctx, id, "return", Return)
}

// transition applies a lending state change to a single book and saves
// the catalog only if the change succeeded.
func (cs *CatalogService) transition(ctx context.Context, id int, op string, apply func(*Book) error) (Book, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	books, err := cs.storage.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if !isValidPosition(books, id) {
		return Book{}, ErrBookNotFound
	}

	book := books[id]
	if err = apply(&book); err != nil {
		cs.metrics.IncLendingRejected(op)
		return books[id], err
	}
	books[id] = book
	if err = cs.storage.Save(ctx, books); err != nil {
		return Book{}, err
	}
	cs.metrics.IncCatalogOperation(op)
	cs.logger.Debug("lending state changed", zap.String("lending.op", op), zap.Int("book.id", id))
	return book, nil
}

func isValidPosition(books []Book, id int) bool {
	return id >= 0 && id < len(books)
}
