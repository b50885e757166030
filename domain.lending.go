package main

// BorrowRequest carries the optional details captured when lending a book.
type BorrowRequest struct {
	DueDate      string `json:"due_date"`
	BorrowerName string `json:"borrower_name"`
}

// Borrow moves an available book to the borrowed state. The borrow date
// is stamped with today while due date and borrower are only set if given.
func Borrow(b *Book, req BorrowRequest, today string) error {
	if b.Borrowed {
		return ErrBookAlreadyBorrowed
	}
	b.Borrowed = true
	b.BorrowDate = today
	b.DueDate = req.DueDate
	b.BorrowerName = req.BorrowerName
	return nil
}

// Return moves a borrowed book back to the available state and
// clears all lending details.
func Return(b *Book) error {
	if !b.Borrowed {
		return ErrBookNotBorrowed
	}
	b.Borrowed = false
	b.BorrowDate = ""
	b.DueDate = ""
	b.BorrowerName = ""
	return nil
}

// IsOverdue reports whether a borrowed book is past its due date.
//
// Dates are compared as plain dd.mm.yyyy strings, not as calendar dates,
// so "05.01.2025" sorts before "01.12.2024". Existing clients rely on
// this ordering.
func IsOverdue(b Book, today string) bool {
	return b.Borrowed && b.DueDate != "" && b.DueDate < today
}
