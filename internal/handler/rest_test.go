package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/catalog"
	"github.com/vyrodovalexey/media-catalog/internal/model"
	"github.com/vyrodovalexey/media-catalog/internal/schema"
	"github.com/vyrodovalexey/media-catalog/internal/store"
)

// mockCatalog returns canned errors for every operation.
type mockCatalog struct {
	err error
}

func (m *mockCatalog) List(context.Context, model.Category) ([]model.Record, error) {
	return nil, m.err
}

func (m *mockCatalog) Get(context.Context, model.Category, string) (model.Record, error) {
	return nil, m.err
}

func (m *mockCatalog) Create(context.Context, model.Category, model.Record) (model.Record, error) {
	return nil, m.err
}

func (m *mockCatalog) Update(context.Context, model.Category, string, model.Record) (model.Record, error) {
	return nil, m.err
}

func (m *mockCatalog) Delete(context.Context, model.Category, string) (model.Record, error) {
	return nil, m.err
}

func newTestRouter(t *testing.T, c Catalog) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	NewRESTHandler(c, zap.NewNop()).RegisterRoutes(router)
	return router
}

func newSeededGateway(t *testing.T, seed map[model.Category][]model.Record) *catalog.Gateway {
	t.Helper()
	s := store.NewMemoryStore()
	for c, records := range seed {
		if err := s.Save(context.Background(), c, records); err != nil {
			t.Fatalf("seed %s: %v", c, err)
		}
	}
	return catalog.NewGateway(s, schema.New(nil), zap.NewNop(),
		catalog.WithClock(func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }),
	)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestRESTHandler_HealthCheck(t *testing.T) {
	// Arrange
	router := newTestRouter(t, &mockCatalog{})

	// Act
	rr := doRequest(router, http.MethodGet, "/health", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body model.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Version != model.Version {
		t.Errorf("body = %+v", body)
	}
}

func TestRESTHandler_ListItems_ReturnsBareArray(t *testing.T) {
	// Arrange
	gw := newSeededGateway(t, map[model.Category][]model.Record{
		model.CategoryMusic: {
			{"id": "music-2", "title": "B", "artist": "X"},
			{"id": "music-1", "title": "A", "artist": "Y"},
		},
	})
	router := newTestRouter(t, gw)

	// Act
	rr := doRequest(router, http.MethodGet, "/api/music", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var records []model.Record
	if err := json.NewDecoder(rr.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 || records[0].ID() != "music-2" {
		t.Errorf("records = %v, want stored order", records)
	}
}

func TestRESTHandler_ListItems_EmptyCategory(t *testing.T) {
	// Arrange
	router := newTestRouter(t, newSeededGateway(t, nil))

	// Act
	rr := doRequest(router, http.MethodGet, "/api/series", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestRESTHandler_GetItem(t *testing.T) {
	gw := newSeededGateway(t, map[model.Category][]model.Record{
		model.CategoryBooks: {{"id": "book-1", "title": "Dune", "author": "Herbert"}},
	})
	router := newTestRouter(t, gw)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantError  string
	}{
		{name: "existing item", path: "/api/books/book-1", wantStatus: http.StatusOK},
		{name: "missing item", path: "/api/books/book-9", wantStatus: http.StatusNotFound, wantError: "Item not found"},
		{name: "unknown category", path: "/api/games/game-1", wantStatus: http.StatusNotFound, wantError: "Unknown category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rr := doRequest(router, http.MethodGet, tt.path, "")

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rr).Error; got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				return
			}
			var record model.Record
			if err := json.NewDecoder(rr.Body).Decode(&record); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if record.String("title") != "Dune" {
				t.Errorf("title = %q, want Dune", record.String("title"))
			}
		})
	}
}

func TestRESTHandler_CreateItem(t *testing.T) {
	// Arrange
	gw := newSeededGateway(t, nil)
	router := newTestRouter(t, gw)

	// Act
	rr := doRequest(router, http.MethodPost, "/api/books", `{"title":"T","author":"A"}`)

	// Assert
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var record model.Record
	if err := json.NewDecoder(rr.Body).Decode(&record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !regexp.MustCompile(`^book-\d+$`).MatchString(record.ID()) {
		t.Errorf("id = %q, want book-<n>", record.ID())
	}
	if record.String("addedDate") != "2026-10-16" {
		t.Errorf("addedDate = %q, want 2026-10-16", record.String("addedDate"))
	}
	listed, _ := gw.List(context.Background(), model.CategoryBooks)
	if len(listed) != 1 {
		t.Errorf("stored %d records, want 1", len(listed))
	}
}

func TestRESTHandler_CreateItem_ValidationFailed(t *testing.T) {
	// Arrange
	router := newTestRouter(t, newSeededGateway(t, nil))

	// Act
	rr := doRequest(router, http.MethodPost, "/api/books", `{"title":"","author":"A","rating":11,"year":999}`)

	// Assert
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	body := decodeError(t, rr)
	if body.Error != "Validation failed" {
		t.Errorf("error = %q, want Validation failed", body.Error)
	}
	want := []string{
		"title is required",
		"rating must be a number between 1 and 10",
		"year must be a number between 1000 and 2100",
	}
	if len(body.Details) != len(want) {
		t.Fatalf("details = %v, want %v", body.Details, want)
	}
	for i := range want {
		if body.Details[i] != want[i] {
			t.Errorf("details[%d] = %q, want %q", i, body.Details[i], want[i])
		}
	}
}

func TestRESTHandler_CreateItem_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "syntax error", body: `{"title":`},
		{name: "array body", body: `[{"title":"T"}]`},
		{name: "null body", body: `null`},
		{name: "empty body", body: ``},
		{name: "trailing garbage", body: `{"title":"T","author":"A"} garbage`},
		{name: "second object", body: `{"title":"T","author":"A"}{"title":"U"}`},
	}

	gw := newSeededGateway(t, nil)
	router := newTestRouter(t, gw)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rr := doRequest(router, http.MethodPost, "/api/books", tt.body)

			// Assert
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			if got := decodeError(t, rr).Error; got != "Invalid JSON" {
				t.Errorf("error = %q, want Invalid JSON", got)
			}
			records, err := gw.List(context.Background(), model.CategoryBooks)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(records) != 0 {
				t.Errorf("List() = %v, want no records written", records)
			}
		})
	}
}

func TestRESTHandler_CreateItem_TrailingWhitespaceAccepted(t *testing.T) {
	// Arrange
	router := newTestRouter(t, newSeededGateway(t, nil))

	// Act
	rr := doRequest(router, http.MethodPost, "/api/books", "{\"title\":\"T\",\"author\":\"A\"}\n\t \n")

	// Assert
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
}

func TestRESTHandler_UpdateItem_MergesAndKeepsID(t *testing.T) {
	// Arrange
	gw := newSeededGateway(t, map[model.Category][]model.Record{
		model.CategoryMovies: {{"id": "movie-1", "title": "Alien", "cover": "/covers/alien.jpg", "rating": 8.0}},
	})
	router := newTestRouter(t, gw)

	// Act
	rr := doRequest(router, http.MethodPut, "/api/movies/movie-1", `{"id":"movie-99","title":"Alien","cover":"/covers/alien.jpg","rating":9}`)

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var record model.Record
	if err := json.NewDecoder(rr.Body).Decode(&record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.ID() != "movie-1" {
		t.Errorf("id = %q, want movie-1", record.ID())
	}
	if record.String("rating") != "9" || record.String("cover") != "/covers/alien.jpg" {
		t.Errorf("record = %v, want merged fields", record)
	}
}

func TestRESTHandler_UpdateItem_NotFound(t *testing.T) {
	// Arrange
	router := newTestRouter(t, newSeededGateway(t, nil))

	// Act
	rr := doRequest(router, http.MethodPut, "/api/music/music-7", `{"title":"T","artist":"A","rating":5}`)

	// Assert
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRESTHandler_DeleteItem(t *testing.T) {
	// Arrange
	gw := newSeededGateway(t, map[model.Category][]model.Record{
		model.CategoryBooks: {
			{"id": "book-2", "title": "B", "author": "X"},
			{"id": "book-1", "title": "A", "author": "Y"},
		},
	})
	router := newTestRouter(t, gw)

	// Act
	rr := doRequest(router, http.MethodDelete, "/api/books/book-2", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body model.DeleteResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Deleted.ID() != "book-2" {
		t.Errorf("body = %+v", body)
	}
	listed, _ := gw.List(context.Background(), model.CategoryBooks)
	if len(listed) != 1 || listed[0].ID() != "book-1" {
		t.Errorf("remaining = %v, want only book-1", listed)
	}
}

func TestRESTHandler_DeleteItem_NotFound(t *testing.T) {
	// Arrange
	router := newTestRouter(t, newSeededGateway(t, nil))

	// Act
	rr := doRequest(router, http.MethodDelete, "/api/books/nonexistent", "")

	// Assert
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := decodeError(t, rr).Error; got != "Item not found" {
		t.Errorf("error = %q, want Item not found", got)
	}
}

func TestRESTHandler_CatalogErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "not found", err: catalog.ErrNotFound, wantStatus: http.StatusNotFound, wantError: "Item not found"},
		{name: "unknown category", err: model.ErrUnknownCategory, wantStatus: http.StatusNotFound, wantError: "Unknown category"},
		{name: "malformed payload", err: catalog.ErrMalformedPayload, wantStatus: http.StatusBadRequest, wantError: "Invalid JSON"},
		{
			name:       "validation",
			err:        &schema.ValidationError{Errors: []string{"title is required"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Validation failed",
		},
		{name: "store failure", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantError: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router := newTestRouter(t, &mockCatalog{err: tt.err})

			// Act
			rr := doRequest(router, http.MethodPut, "/api/books/book-1", `{"title":"T"}`)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := decodeError(t, rr).Error; got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}
