package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var pagesFS embed.FS

// MustParsePages loads the html templates of the web interface.
func MustParsePages() *template.Template {
	return template.Must(template.ParseFS(pagesFS, "templates/*.html"))
}

type indexPage struct {
	Filter     BookFilter
	Categories []string
	Books      []BookEntry
}

type editPage struct {
	ID         int
	Book       Book
	Categories []string
}

// render executes the named template into a buffer first so that
// a failing template never sends a partial page.
func (api *APIHandler) render(w http.ResponseWriter, logger *zap.Logger, name string, data interface{}) {
	var buf bytes.Buffer
	if err := api.pages.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "failed to render the page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("failed to send page", zap.String("page", name), zap.Error(err))
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index renders the filtered catalog as an html table.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	filter := NewBookFilterFromQuery(r.URL.Query())
	books, err := api.catalog.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list books", zap.Error(err))
		http.Error(w, "failed to load the catalog", http.StatusInternalServerError)
		return
	}
	api.render(w, logger, "index", indexPage{Filter: filter, Categories: Categories, Books: books})
}

// WebCreateBook adds a book from the html form then goes back to the index.
func (api *APIHandler) WebCreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	var book Book
	if err := DecodeBookRequestBody(r, &book); err != nil {
		logger.Warn("failed to read the book form", zap.Error(err))
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	entry, err := api.catalog.Add(r.Context(), book)
	if err != nil {
		logger.Warn("failed to create the book", zap.Error(err))
		http.Error(w, err.Error(), StatusFromError(err))
		return
	}
	logger.Info("success to create book", zap.Int("book.id", entry.ID))
	redirectHome(w, r)
}

// WebBorrowBook lends a book from the html form. Failures are only logged.
func (api *APIHandler) WebBorrowBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	var req BorrowRequest
	id, err := ParseBookID(ps.ByName("id"))
	if err == nil {
		err = DecodeBorrowRequestBody(r, &req)
	}
	if err == nil {
		_, err = api.catalog.Borrow(r.Context(), id, req)
	}
	if err != nil {
		logger.Warn("failed to borrow the book", zap.Error(err))
	}
	redirectHome(w, r)
}

// WebReturnBook returns a book from the html form. Failures are only logged.
func (api *APIHandler) WebReturnBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err == nil {
		_, err = api.catalog.Return(r.Context(), id)
	}
	if err != nil {
		logger.Warn("failed to return the book", zap.Error(err))
	}
	redirectHome(w, r)
}

// WebDeleteBook deletes a book from the html form. Failures are only logged.
func (api *APIHandler) WebDeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err == nil {
		_, err = api.catalog.Delete(r.Context(), id)
	}
	if err != nil {
		logger.Warn("failed to delete the book", zap.Error(err))
	}
	redirectHome(w, r)
}

// EditBookPage renders the edit form of a book.
func (api *APIHandler) EditBookPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}
	book, err := api.catalog.GetOne(r.Context(), id)
	if err != nil {
		if StatusFromError(err) == http.StatusNotFound {
			http.Error(w, "Book not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get book", zap.Error(err))
		http.Error(w, "failed to load the catalog", http.StatusInternalServerError)
		return
	}
	api.render(w, logger, "edit", editPage{ID: id, Book: book, Categories: Categories})
}

// WebUpdateBook saves the edit form then goes back to the index.
func (api *APIHandler) WebUpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}
	var book Book
	if err = DecodeBookRequestBody(r, &book); err != nil {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if _, err = api.catalog.Update(r.Context(), id, book); err != nil {
		status := StatusFromError(err)
		switch status {
		case http.StatusNotFound:
			http.Error(w, "Book not found", status)
		case http.StatusBadRequest:
			http.Error(w, "Missing fields: "+err.Error(), status)
		default:
			logger.Error("failed to update the book", zap.Error(err))
			http.Error(w, "failed to update the book", status)
		}
		return
	}
	logger.Info("success to update book")
	redirectHome(w, r)
}
