// Package catalog implements create, read, update and delete of catalog
// records on top of a Store, validating every write against the schema.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/model"
	"github.com/vyrodovalexey/media-catalog/internal/schema"
	"github.com/vyrodovalexey/media-catalog/internal/store"
)

// Gateway errors.
var (
	ErrNotFound         = errors.New("item not found")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Write operations, used as metric labels.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var (
	writesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_writes_total",
			Help: "Total number of catalog write operations",
		},
		[]string{"category", "operation", "result"},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_validation_failures_total",
			Help: "Number of write payloads rejected by schema validation",
		},
		[]string{"category"},
	)
)

// Notifier is told about every successful write to a category.
type Notifier interface {
	Notify(c model.Category)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(c model.Category)

// Notify calls f(c).
func (f NotifierFunc) Notify(c model.Category) {
	f(c)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the clock used for default added dates.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithNotifier registers a notifier for successful writes.
func WithNotifier(n Notifier) Option {
	return func(g *Gateway) {
		g.notifiers = append(g.notifiers, n)
	}
}

// Gateway is the record store gateway. Reads bypass validation; creates and
// updates are validated first. Concurrent writes to one category are not
// serialized beyond what the Store provides.
type Gateway struct {
	store     store.Store
	validator *schema.Validator
	logger    *zap.Logger
	now       func() time.Time
	notifiers []Notifier

	mu         sync.Mutex
	lastIssued map[model.Category]int
}

// NewGateway creates a Gateway.
func NewGateway(s store.Store, v *schema.Validator, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:      s,
		validator:  v,
		logger:     logger,
		now:        time.Now,
		lastIssued: make(map[model.Category]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate checks a payload as Create and Update would, without writing.
func (g *Gateway) Validate(c model.Category, payload model.Record) schema.Result {
	result := g.validator.Validate(c, payload)
	if errs := coverProtocolErrors(payload); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		result.Valid = false
	}
	return result
}

// List returns the full collection of a category in stored order.
func (g *Gateway) List(ctx context.Context, c model.Category) ([]model.Record, error) {
	if !c.Valid() {
		return nil, model.ErrUnknownCategory
	}
	records, err := g.store.Load(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	return records, nil
}

// Get returns one record by identifier.
func (g *Gateway) Get(ctx context.Context, c model.Category, id string) (model.Record, error) {
	records, err := g.List(ctx, c)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return records[i], nil
}

// Create validates payload, assigns the next identifier, defaults the added
// date to today and prepends the record to the collection.
func (g *Gateway) Create(ctx context.Context, c model.Category, payload model.Record) (model.Record, error) {
	if !c.Valid() {
		return nil, model.ErrUnknownCategory
	}
	if err := g.check(c, payload, OpCreate); err != nil {
		return nil, err
	}

	records, err := g.store.Load(ctx, c)
	if err != nil {
		return nil, g.failed(c, OpCreate, err)
	}

	record := payload.Clone()
	record[model.FieldID] = g.nextID(c, records)
	if record.String(model.FieldAddedDate) == "" {
		record[model.FieldAddedDate] = g.now().Format(model.DateLayout)
	}

	records = append([]model.Record{record}, records...)
	if err := g.store.Save(ctx, c, records); err != nil {
		return nil, g.failed(c, OpCreate, err)
	}

	g.succeeded(c, OpCreate, record.ID())
	return record, nil
}

// Update validates payload and merges it over the record with identifier id.
// The identifier itself never changes.
func (g *Gateway) Update(ctx context.Context, c model.Category, id string, payload model.Record) (model.Record, error) {
	if !c.Valid() {
		return nil, model.ErrUnknownCategory
	}
	if err := g.check(c, payload, OpUpdate); err != nil {
		return nil, err
	}

	records, err := g.store.Load(ctx, c)
	if err != nil {
		return nil, g.failed(c, OpUpdate, err)
	}

	i := indexOf(records, id)
	if i < 0 {
		writesTotal.WithLabelValues(string(c), OpUpdate, "not_found").Inc()
		return nil, ErrNotFound
	}

	merged := records[i].Merge(payload)
	records[i] = merged
	if err := g.store.Save(ctx, c, records); err != nil {
		return nil, g.failed(c, OpUpdate, err)
	}

	g.succeeded(c, OpUpdate, id)
	return merged, nil
}

// Delete removes the record with identifier id and returns it.
func (g *Gateway) Delete(ctx context.Context, c model.Category, id string) (model.Record, error) {
	if !c.Valid() {
		return nil, model.ErrUnknownCategory
	}

	records, err := g.store.Load(ctx, c)
	if err != nil {
		return nil, g.failed(c, OpDelete, err)
	}

	i := indexOf(records, id)
	if i < 0 {
		writesTotal.WithLabelValues(string(c), OpDelete, "not_found").Inc()
		return nil, ErrNotFound
	}

	removed := records[i]
	records = append(records[:i], records[i+1:]...)
	if err := g.store.Save(ctx, c, records); err != nil {
		return nil, g.failed(c, OpDelete, err)
	}

	g.succeeded(c, OpDelete, id)
	return removed, nil
}

// check validates a write payload and logs the outcome.
func (g *Gateway) check(c model.Category, payload model.Record, op string) error {
	if payload == nil {
		return ErrMalformedPayload
	}

	result := g.Validate(c, payload)
	if len(result.Warnings) > 0 {
		g.logger.Warn("payload has fields outside the schema",
			zap.String("category", string(c)),
			zap.String("operation", op),
			zap.Strings("warnings", result.Warnings),
		)
	}
	if !result.Valid {
		validationFailures.WithLabelValues(string(c)).Inc()
		writesTotal.WithLabelValues(string(c), op, "invalid").Inc()
		g.logger.Warn("validation failed",
			zap.String("category", string(c)),
			zap.String("operation", op),
			zap.Strings("errors", result.Errors),
		)
		return result.Err()
	}
	return nil
}

func (g *Gateway) failed(c model.Category, op string, err error) error {
	writesTotal.WithLabelValues(string(c), op, "error").Inc()
	g.logger.Error("store operation failed",
		zap.String("category", string(c)),
		zap.String("operation", op),
		zap.Error(err),
	)
	return fmt.Errorf("%s %s: %w", op, c, err)
}

func (g *Gateway) succeeded(c model.Category, op, id string) {
	writesTotal.WithLabelValues(string(c), op, "ok").Inc()
	g.logger.Info("catalog record written",
		zap.String("category", string(c)),
		zap.String("operation", op),
		zap.String("id", id),
	)
	for _, n := range g.notifiers {
		n.Notify(c)
	}
}

// nextID returns "{prefix}-{n}" where n exceeds every identifier in records
// and every identifier issued by this gateway, so deleted ids are not reused.
func (g *Gateway) nextID(c model.Category, records []model.Record) string {
	prefix := c.IDPrefix() + "-"
	highest := 0
	for _, r := range records {
		suffix, ok := strings.CutPrefix(r.ID(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if last := g.lastIssued[c]; last > highest {
		highest = last
	}
	highest++
	g.lastIssued[c] = highest

	return prefix + strconv.Itoa(highest)
}

func indexOf(records []model.Record, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// coverProtocolErrors rejects absolute cover URLs that are not http or https.
// Local paths and values the schema already rejects are left alone.
func coverProtocolErrors(payload model.Record) []string {
	cover, ok := payload[model.FieldCover].(string)
	if !ok || cover == "" || strings.HasPrefix(cover, "/") {
		return nil
	}
	u, err := url.Parse(cover)
	if err != nil || u.Scheme == "" {
		return nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return []string{model.FieldCover + " must use http or https"}
}
