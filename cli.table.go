package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// IsColorTerminal reports whether f is attached to a terminal.
func IsColorTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RenderBooks prints the books as an aligned table. Overdue rows are
// printed in red when color is set, or flagged with `!` otherwise.
func RenderBooks(w io.Writer, books []BookEntry, color bool) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tNAME\tAUTHOR\tPUBLICATION DATE\tCATEGORY\tSTATUS\tBORROWER\tDUE DATE")
	for _, b := range books {
		marker := " "
		if b.Overdue && !color {
			marker = "!"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, b.ID, cell(b.Name), cell(b.Author), cell(b.PublicationDate), cell(b.Category), b.Status(), cell(dash(b.BorrowerName)), cell(dash(b.DueDate)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, line := range lines {
		// line 0 is the header.
		if color && i > 0 && i <= len(books) && books[i-1].Overdue {
			line = ansiRed + line + ansiReset
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBook prints the details of a single book.
func RenderBook(w io.Writer, b BookEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", strconv.Itoa(b.ID)},
		{"Name", cell(b.Name)},
		{"Author", cell(b.Author)},
		{"Publication Date", cell(b.PublicationDate)},
		{"Category", cell(b.Category)},
		{"Status", b.Status()},
		{"Borrower", cell(dash(b.BorrowerName))},
		{"Borrow Date", dash(b.BorrowDate)},
		{"Due Date", dash(b.DueDate)},
		{"Overdue", strconv.FormatBool(b.Overdue)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

// cellReplacer keeps each row of the table on a single line.
var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "\v", " ", "\f", " ")

func cell(s string) string {
	return cellReplacer.Replace(s)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
