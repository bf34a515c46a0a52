package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/catalog"
	"github.com/vyrodovalexey/media-catalog/internal/middleware"
	"github.com/vyrodovalexey/media-catalog/internal/model"
	"github.com/vyrodovalexey/media-catalog/internal/schema"
)

// maxBodyBytes bounds write payloads.
const maxBodyBytes = 1 << 20

// Client-facing error messages.
const (
	msgValidationFailed = "Validation failed"
	msgNotFound         = "Item not found"
	msgInvalidJSON      = "Invalid JSON"
	msgUnknownCategory  = "Unknown category"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// RESTHandler serves the catalog admin API.
type RESTHandler struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(c Catalog, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		catalog: c,
		logger:  logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/{category}", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/api/{category}", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/api/{category}/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/api/{category}/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/api/{category}/{id}", h.DeleteItem).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, model.HealthResponse{
		Status:  "healthy",
		Version: model.Version,
	})
}

// ListItems handles GET /api/{category}. The body is the bare array.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	c := model.Category(mux.Vars(r)["category"])

	records, err := h.catalog.List(r.Context(), c)
	if err != nil {
		h.handleCatalogError(w, err, "list items")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, records)
}

// GetItem handles GET /api/{category}/{id}.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	record, err := h.catalog.Get(r.Context(), model.Category(vars["category"]), vars["id"])
	if err != nil {
		h.handleCatalogError(w, err, "get item")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, record)
}

// CreateItem handles POST /api/{category}.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	c := model.Category(mux.Vars(r)["category"])

	payload, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	record, err := h.catalog.Create(r.Context(), c, payload)
	if err != nil {
		h.handleCatalogError(w, err, "create item")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, record)
}

// UpdateItem handles PUT /api/{category}/{id}. The payload is merged over
// the stored record.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	payload, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	record, err := h.catalog.Update(r.Context(), model.Category(vars["category"]), vars["id"], payload)
	if err != nil {
		h.handleCatalogError(w, err, "update item")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, record)
}

// DeleteItem handles DELETE /api/{category}/{id}.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	removed, err := h.catalog.Delete(r.Context(), model.Category(vars["category"]), vars["id"])
	if err != nil {
		h.handleCatalogError(w, err, "delete item")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.DeleteResponse{Success: true, Deleted: removed})
}

// decodeRecord reads a JSON object body. Anything else is answered with 400.
func (h *RESTHandler) decodeRecord(w http.ResponseWriter, r *http.Request) (model.Record, bool) {
	var payload model.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&payload)
	if err == nil {
		err = expectEOF(dec)
	}
	if err != nil {
		h.logger.Warn("invalid request body",
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return payload, true
}

// expectEOF fails when anything other than whitespace follows the body value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// handleCatalogError maps gateway errors to HTTP responses.
func (h *RESTHandler) handleCatalogError(w http.ResponseWriter, err error, operation string) {
	if verr, ok := schema.AsValidationError(err); ok {
		writeError(w, http.StatusBadRequest, msgValidationFailed, verr.Errors...)
		return
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, model.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, msgUnknownCategory)
	case errors.Is(err, catalog.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
	default:
		h.logger.Error("catalog operation failed", zap.String("operation", operation), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
