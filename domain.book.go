package main

import "context"

// DateLayout is the dd.mm.yyyy format used for borrow and due dates.
const DateLayout = "02.01.2006"

// Categories lists the suggested book categories. They are offered by
// the user interfaces but never enforced on create or update.
var Categories = []string{"Fiction", "Non-Fiction", "Science", "History", "Philosophy"}

// Book represents a catalog entry with its lending metadata. It has no
// stored identifier: a book is identified by its position in the catalog.
type Book struct {
	Name            string `json:"name"`
	Author          string `json:"author"`
	PublicationDate string `json:"publication_date"`
	Category        string `json:"category"`
	Borrowed        bool   `json:"borrowed"`
	BorrowDate      string `json:"borrow_date,omitempty"`
	DueDate         string `json:"due_date,omitempty"`
	BorrowerName    string `json:"borrower_name,omitempty"`
}

// BookEntry is a book annotated with its positional id at the time the
// catalog was loaded, and its overdue status at the time of listing.
type BookEntry struct {
	ID      int  `json:"id"`
	Overdue bool `json:"overdue"`
	Book
}

// Status returns the human label of the book lending state.
func (b Book) Status() string {
	if b.Borrowed {
		return "Borrowed"
	}
	return "Available"
}

// CatalogStore defines the load/save boundary over the persisted catalog.
// Each driver keeps the whole collection as a single JSON document.
type CatalogStore interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, books []Book) error
	Close() error
}
