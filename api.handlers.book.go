package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// sendError logs the failure and sends the error envelope. The status
// code is derived from the error kind.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, err error, data interface{}) {
	status := StatusFromError(err)
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if status == http.StatusInternalServerError {
		logger.Error(message, zap.Error(err))
	} else {
		logger.Warn(message, zap.Error(err))
	}
	errResp := NewAPIError(requestID, status, err.Error(), data)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

// sendBadRequest sends a 400 error envelope for malformed inputs.
func (api *APIHandler) sendBadRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger.Warn(message, zap.Error(err))
	errResp := NewAPIError(requestID, http.StatusBadRequest, message+": "+err.Error(), EmptyData)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

func (api *APIHandler) sendSuccess(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// GetAllBooks godoc
// @Summary      List books
// @Description  Lists the catalog in stored order. Filters are conjunctive and case-insensitive.
// @Tags         books
// @Produce      json
// @Param        borrowed  query     string  false  "available or borrowed"
// @Param        category  query     string  false  "exact category"
// @Param        name      query     string  false  "exact name"
// @Success      200       {object}  APIResponse{data=[]BookEntry}
// @Failure      500       {object}  APIError
// @Router       /v1/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	filter := NewBookFilterFromQuery(r.URL.Query())
	books, err := api.catalog.List(r.Context(), filter)
	if err != nil {
		api.sendError(w, r, logger, "failed to get all books", err, []BookEntry{})
		return
	}
	logger.Info("success to get all books", zap.Int("books.total", len(books)))
	total := len(books)
	api.sendSuccess(w, r, logger, http.StatusOK, "All books fetched successfully.", &total, books)
}

// GetOneBook godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "positional book id"
// @Success      200  {object}  APIResponse{data=Book}
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Router       /v1/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendBadRequest(w, r, logger, "book id provided is not valid", err)
		return
	}
	book, err := api.catalog.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, logger, "failed to get book", err, EmptyData)
		return
	}
	logger.Info("success to get book")
	api.sendSuccess(w, r, logger, http.StatusOK, "Book fetched successfully.", nil, BookEntry{ID: id, Overdue: IsOverdue(book, Today(api.clock)), Book: book})
}

// CreateBook godoc
// @Summary      Add a book
// @Description  Appends an available book. Accepts a JSON document or a form submission.
// @Tags         books
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        book  body      Book  true  "name, publication_date, author and category"
// @Success      201   {object}  APIResponse{data=BookEntry}
// @Failure      400   {object}  APIError
// @Router       /v1/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	var book Book
	if err := DecodeBookRequestBody(r, &book); err != nil {
		api.sendBadRequest(w, r, logger, "failed to read the book", err)
		return
	}

	entry, err := api.catalog.Add(r.Context(), book)
	if err != nil {
		api.sendError(w, r, logger, "failed to create the book", err, book)
		return
	}
	logger.Info("success to create book", zap.Int("book.id", entry.ID))
	api.sendSuccess(w, r, logger, http.StatusCreated, "Book created successfully.", nil, entry)
}

// UpdateBook godoc
// @Summary      Edit a book
// @Description  Replaces name, publication date, author and category. Lending details are kept.
// @Tags         books
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      int   true  "positional book id"
// @Param        book  body      Book  true  "name, publication_date, author and category"
// @Success      200   {object}  APIResponse{data=BookEntry}
// @Failure      400   {object}  APIError
// @Failure      404   {object}  APIError
// @Router       /v1/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendBadRequest(w, r, logger, "book id provided is not valid", err)
		return
	}
	var book Book
	if err = DecodeBookRequestBody(r, &book); err != nil {
		api.sendBadRequest(w, r, logger, "failed to read the book", err)
		return
	}

	updated, err := api.catalog.Update(r.Context(), id, book)
	if err != nil {
		api.sendError(w, r, logger, "failed to update the book", err, book)
		return
	}
	logger.Info("success to update book")
	api.sendSuccess(w, r, logger, http.StatusOK, "Book updated successfully.", nil, BookEntry{ID: id, Overdue: IsOverdue(updated, Today(api.clock)), Book: updated})
}

// DeleteOneBook godoc
// @Summary      Delete a book
// @Description  Removes a book. Every following book moves one position down.
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "positional book id"
// @Success      200  {object}  APIResponse{data=Book}
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Router       /v1/books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendBadRequest(w, r, logger, "book id provided is not valid", err)
		return
	}
	book, err := api.catalog.Delete(r.Context(), id)
	if err != nil {
		api.sendError(w, r, logger, "failed to delete the book", err, EmptyData)
		return
	}
	logger.Info("success to delete book")
	api.sendSuccess(w, r, logger, http.StatusOK, "Book deleted successfully.", nil, book)
}

// BorrowBook godoc
// @Summary      Borrow a book
// @Description  Lends an available book. Borrow date is set to today.
// @Tags         lending
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      int            true   "positional book id"
// @Param        request  body      BorrowRequest  false  "optional due date (dd.mm.yyyy) and borrower name"
// @Success      200      {object}  APIResponse{data=BookEntry}
// @Failure      404      {object}  APIError
// @Failure      409      {object}  APIError
// @Router       /v1/books/{id}/borrow [post]
func (api *APIHandler) BorrowBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendBadRequest(w, r, logger, "book id provided is not valid", err)
		return
	}
	var req BorrowRequest
	if err = DecodeBorrowRequestBody(r, &req); err != nil {
		api.sendBadRequest(w, r, logger, "failed to read the borrow request", err)
		return
	}

	book, err := api.catalog.Borrow(r.Context(), id, req)
	if err != nil {
		api.sendError(w, r, logger, "failed to borrow the book", err, EmptyData)
		return
	}
	logger.Info("success to borrow book", zap.String("book.due_date", book.DueDate))
	api.sendSuccess(w, r, logger, http.StatusOK, "Book borrowed successfully.", nil, BookEntry{ID: id, Overdue: IsOverdue(book, Today(api.clock)), Book: book})
}

// ReturnBook godoc
// @Summary      Return a book
// @Tags         lending
// @Produce      json
// @Param        id   path      int  true  "positional book id"
// @Success      200  {object}  APIResponse{data=BookEntry}
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Router       /v1/books/{id}/return [post]
func (api *APIHandler) ReturnBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context()).With(zap.String("book.id", ps.ByName("id")))
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendBadRequest(w, r, logger, "book id provided is not valid", err)
		return
	}

	book, err := api.catalog.Return(r.Context(), id)
	if err != nil {
		api.sendError(w, r, logger, "failed to return the book", err, EmptyData)
		return
	}
	logger.Info("success to return book")
	api.sendSuccess(w, r, logger, http.StatusOK, "Book returned successfully.", nil, BookEntry{ID: id, Book: book})
}
