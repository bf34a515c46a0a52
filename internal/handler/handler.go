// Package handler provides HTTP request handlers for the catalog admin API
// and the browse WebSocket.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/middleware"
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// Lister reads a whole category collection.
type Lister interface {
	List(ctx context.Context, c model.Category) ([]model.Record, error)
}

// Catalog is the record gateway used by the REST handler.
type Catalog interface {
	Lister
	Get(ctx context.Context, c model.Category, id string) (model.Record, error)
	Create(ctx context.Context, c model.Category, payload model.Record) (model.Record, error)
	Update(ctx context.Context, c model.Category, id string, payload model.Record) (model.Record, error)
	Delete(ctx context.Context, c model.Category, id string) (model.Record, error)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	middleware.WriteError(w, status, message, details...)
}
