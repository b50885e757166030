package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// decodeEnvelope reads the json envelope sent by the api handlers.
func decodeEnvelope(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(data, &m), string(data))
	return m
}

func idParams(id string) httprouter.Params {
	return httprouter.Params{httprouter.Param{Key: "id", Value: id}}
}

// TestGetAllBooksHandler ensures api handler can list and filter books.
func TestGetAllBooksHandler(t *testing.T) {
	api, _ := newTestAPIHandler(bookDune, bookSapiens, bookCosmos)

	t.Run("should pass: no filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		w := httptest.NewRecorder()
		api.GetAllBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		m := decodeEnvelope(t, res)
		assert.Equal(t, "All books fetched successfully.", m["message"])
		assert.Equal(t, float64(3), m["total"])
		data, ok := m["data"].([]interface{})
		require.True(t, ok)
		require.Len(t, data, 3)
		second := data[1].(map[string]interface{})
		assert.Equal(t, float64(1), second["id"])
		assert.Equal(t, "Sapiens", second["name"])
		assert.Equal(t, true, second["overdue"])
	})

	t.Run("should pass: borrowed filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/books?borrowed=available&category=FICTION", nil)
		w := httptest.NewRecorder()
		api.GetAllBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		m := decodeEnvelope(t, res)
		assert.Equal(t, float64(1), m["total"])
		data := m["data"].([]interface{})
		assert.Equal(t, "Dune", data[0].(map[string]interface{})["name"])
	})

	t.Run("should pass: nothing matches", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/books?name=Unknown", nil)
		w := httptest.NewRecorder()
		api.GetAllBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()

		m := decodeEnvelope(t, res)
		assert.Equal(t, float64(0), m["total"])
		assert.Equal(t, []interface{}{}, m["data"])
	})
}

// TestGetAllBooksHandler_StorageFailure ensures storage failures produce a 500.
func TestGetAllBooksHandler_StorageFailure(t *testing.T) {
	store := &MockCatalogStore{
		LoadFunc: func(ctx context.Context) ([]Book, error) {
			return nil, ErrCatalogParse
		},
	}
	clock := NewMockClocker()
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{}, clock, NewMockUIDHandler("test", true), nil,
		NewCatalogService(zap.NewNop(), clock, store, nil))

	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	w := httptest.NewRecorder()
	api.GetAllBooks(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	m := decodeEnvelope(t, res)
	assert.Equal(t, float64(http.StatusInternalServerError), m["status"])
	assert.Contains(t, m["message"], "malformed")
}

// TestGetOneBookHandler ensures api handler can fetch a book by position.
func TestGetOneBookHandler(t *testing.T) {
	api, _ := newTestAPIHandler(bookDune, bookSapiens)

	testCases := []struct {
		name   string
		id     string
		status int
	}{
		{"should pass: existing book", "1", http.StatusOK},
		{"should fail: out of range", "2", http.StatusNotFound},
		{"should fail: negative", "-1", http.StatusNotFound},
		{"should fail: not a number", "abc", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/books/"+tc.id, nil)
			w := httptest.NewRecorder()
			api.GetOneBook(w, req, idParams(tc.id))
			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			m := decodeEnvelope(t, res)
			assert.Equal(t, float64(tc.status), m["status"])
			if tc.status == http.StatusOK {
				data := m["data"].(map[string]interface{})
				assert.Equal(t, "Sapiens", data["name"])
				assert.Equal(t, "Alice", data["borrower_name"])
				assert.Equal(t, true, data["overdue"])
			}
		})
	}
}

// TestCreateBookHandler ensures api handler can create a book.
func TestCreateBookHandler(t *testing.T) {
	t.Run("should pass: valid json payload", func(t *testing.T) {
		api, mem := newTestAPIHandler(bookDune)
		payload, err := json.Marshal(bookCosmos)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)

		m := decodeEnvelope(t, res)
		assert.Equal(t, "Book created successfully.", m["message"])
		data := m["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["id"])
		assert.Equal(t, false, data["borrowed"])
		assert.Equal(t, []Book{bookDune, bookCosmos}, mem.snapshot())
	})

	t.Run("should pass: form payload", func(t *testing.T) {
		api, mem := newTestAPIHandler()
		form := url.Values{
			"name":             {"Dune"},
			"publication_date": {"1965"},
			"author":           {"Frank Herbert"},
			"category":         {"Fiction"},
		}
		req := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, []Book{bookDune}, mem.snapshot())
	})

	t.Run("should fail: missing author", func(t *testing.T) {
		api, mem := newTestAPIHandler()
		req := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{"name":"Dune","publication_date":"1965","category":"Fiction"}`))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeEnvelope(t, res)
		assert.Equal(t, "author is required", m["message"])
		assert.Empty(t, mem.snapshot())
	})

	t.Run("should fail: empty body", func(t *testing.T) {
		api, _ := newTestAPIHandler()
		req := httptest.NewRequest(http.MethodPost, "/v1/books", nil)
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: malformed json", func(t *testing.T) {
		api, _ := newTestAPIHandler()
		req := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{"name":`))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

// TestUpdateBookHandler ensures api handler can edit a book.
func TestUpdateBookHandler(t *testing.T) {
	changes := `{"name":"Sapiens","author":"Y. N. Harari","publication_date":"2014","category":"History"}`

	t.Run("should pass: keeps lending state", func(t *testing.T) {
		api, mem := newTestAPIHandler(bookDune, bookSapiens)
		req := httptest.NewRequest(http.MethodPut, "/v1/books/1", strings.NewReader(changes))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, idParams("1"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeEnvelope(t, res)
		assert.Equal(t, "Book updated successfully.", m["message"])
		updated := mem.snapshot()[1]
		assert.Equal(t, "Y. N. Harari", updated.Author)
		assert.True(t, updated.Borrowed)
		assert.Equal(t, "01.07.2023", updated.DueDate)
	})

	t.Run("should fail: unknown id", func(t *testing.T) {
		api, _ := newTestAPIHandler(bookDune)
		req := httptest.NewRequest(http.MethodPut, "/v1/books/7", strings.NewReader(changes))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, idParams("7"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		m := decodeEnvelope(t, res)
		data, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Sapiens", data["name"])
		assert.Equal(t, "Y. N. Harari", data["author"])
	})

	t.Run("should fail: missing fields", func(t *testing.T) {
		api, _ := newTestAPIHandler(bookDune)
		req := httptest.NewRequest(http.MethodPut, "/v1/books/0", strings.NewReader(`{"name":"Dune"}`))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, idParams("0"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

// TestDeleteOneBookHandler ensures deleting shifts following positions.
func TestDeleteOneBookHandler(t *testing.T) {
	api, mem := newTestAPIHandler(bookDune, bookSapiens, bookCosmos)

	req := httptest.NewRequest(http.MethodDelete, "/v1/books/1", nil)
	w := httptest.NewRecorder()
	api.DeleteOneBook(w, req, idParams("1"))
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeEnvelope(t, res)
	assert.Equal(t, "Book deleted successfully.", m["message"])
	assert.Equal(t, "Sapiens", m["data"].(map[string]interface{})["name"])
	assert.Equal(t, []Book{bookDune, bookCosmos}, mem.snapshot())

	req = httptest.NewRequest(http.MethodDelete, "/v1/books/2", nil)
	w = httptest.NewRecorder()
	api.DeleteOneBook(w, req, idParams("2"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestLendingHandlers ensures borrow and return follow the lending state machine.
func TestLendingHandlers(t *testing.T) {
	api, mem := newTestAPIHandler(bookDune)

	t.Run("should pass: borrow available book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/0/borrow", strings.NewReader(`{"due_date":"01.01.2025","borrower_name":"Bob"}`))
		w := httptest.NewRecorder()
		api.BorrowBook(w, req, idParams("0"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeEnvelope(t, res)
		assert.Equal(t, "Book borrowed successfully.", m["message"])
		data := m["data"].(map[string]interface{})
		assert.Equal(t, "02.07.2023", data["borrow_date"])
		assert.Equal(t, "01.01.2025", data["due_date"])
		assert.Equal(t, "Bob", mem.snapshot()[0].BorrowerName)
	})

	t.Run("should fail: borrow borrowed book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/0/borrow", nil)
		w := httptest.NewRecorder()
		api.BorrowBook(w, req, idParams("0"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Equal(t, "01.01.2025", mem.snapshot()[0].DueDate)
	})

	t.Run("should pass: return borrowed book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/0/return", nil)
		w := httptest.NewRecorder()
		api.ReturnBook(w, req, idParams("0"))
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeEnvelope(t, res)
		assert.Equal(t, "Book returned successfully.", m["message"])
		assert.Equal(t, []Book{bookDune}, mem.snapshot())
	})

	t.Run("should fail: return available book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/0/return", nil)
		w := httptest.NewRecorder()
		api.ReturnBook(w, req, idParams("0"))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should fail: borrow unknown book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/3/borrow", nil)
		w := httptest.NewRecorder()
		api.BorrowBook(w, req, idParams("3"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should pass: borrow with form and no due date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books/0/borrow", strings.NewReader("borrower_name=Carol"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		api.BorrowBook(w, req, idParams("0"))
		assert.Equal(t, http.StatusOK, w.Code)
		b := mem.snapshot()[0]
		assert.True(t, b.Borrowed)
		assert.Empty(t, b.DueDate)
		assert.Equal(t, "Carol", b.BorrowerName)
	})
}
