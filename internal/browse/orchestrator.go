package browse

import (
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/media-catalog/internal/filter"
	"github.com/vyrodovalexey/media-catalog/internal/ordering"
)

// ItemView is the rendered form of one item.
type ItemView interface {
	// Field returns the named record field as text, "" when absent.
	Field(name string) string
	// SetVisible shows or hides the item.
	SetVisible(visible bool)
	// SetPosition moves the item to index in the rendered collection.
	SetPosition(index int)
}

// Snapshot describes the page after an event has been applied.
type Snapshot struct {
	Visible int
	Total   int
	Sort    ordering.Spec
	Filters filter.State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLocale sets the collation locale for text sorting.
func WithLocale(tag language.Tag) Option {
	return func(o *Orchestrator) {
		o.locale = tag
	}
}

// WithCounter registers a callback receiving the visible/total counts after every event.
func WithCounter(fn func(visible, total int)) Option {
	return func(o *Orchestrator) {
		o.counter = fn
	}
}

type entry struct {
	view    ItemView
	visible bool
}

// Orchestrator owns the filter state, the sort spec and every item of a
// page, shown and hidden, in one ordered collection. Events are applied
// synchronously and in full; it is not safe for concurrent use.
type Orchestrator struct {
	entries []*entry
	matcher *filter.Matcher
	state   filter.State
	sort    ordering.Spec
	locale  language.Tag
	counter func(visible, total int)
}

// New creates an Orchestrator over items with every dimension set to
// filter.All and the default sort applied.
func New(items []ItemView, dims []filter.Dimension, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		entries: make([]*entry, len(items)),
		matcher: filter.NewMatcher(dims),
		state:   filter.NewState(dims),
		sort:    ordering.Default,
		locale:  language.Und,
	}
	for _, opt := range opts {
		opt(o)
	}
	for i, view := range items {
		o.entries[i] = &entry{view: view}
	}

	o.reorder()
	o.refilter()
	return o
}

// SelectChip sets dimension to value and recomputes visibility. Unknown
// dimensions leave the page unchanged.
func (o *Orchestrator) SelectChip(dimension, value string) Snapshot {
	if o.state.Set(dimension, value) {
		o.refilter()
	}
	return o.Snapshot()
}

// ChangeStatus applies an out-of-band status selection.
func (o *Orchestrator) ChangeStatus(value string) Snapshot {
	return o.SelectChip(DimensionStatus, value)
}

// ChangeSort reorders every item, shown or hidden, under the sort key.
// Invalid keys leave the order unchanged.
func (o *Orchestrator) ChangeSort(key string) Snapshot {
	spec := ordering.ParseSpec(key)
	if spec.Valid() {
		o.sort = spec
		o.reorder()
	}
	return o.Snapshot()
}

// Reset returns every dimension to filter.All and restores the default sort.
func (o *Orchestrator) Reset() Snapshot {
	for dim := range o.state {
		o.state[dim] = filter.All
	}
	o.sort = ordering.Default
	o.reorder()
	o.refilter()
	return o.Snapshot()
}

// Snapshot returns the current counts and state.
func (o *Orchestrator) Snapshot() Snapshot {
	return Snapshot{
		Visible: o.visibleCount(),
		Total:   len(o.entries),
		Sort:    o.sort,
		Filters: o.state.Clone(),
	}
}

// Items returns every item in the current order.
func (o *Orchestrator) Items() []ItemView {
	views := make([]ItemView, len(o.entries))
	for i, e := range o.entries {
		views[i] = e.view
	}
	return views
}

// VisibleItems returns the shown items in the current order.
func (o *Orchestrator) VisibleItems() []ItemView {
	var views []ItemView
	for _, e := range o.entries {
		if e.visible {
			views = append(views, e.view)
		}
	}
	return views
}

func (o *Orchestrator) refilter() {
	for _, e := range o.entries {
		e.visible = o.matcher.Match(e.view.Field, o.state)
		e.view.SetVisible(e.visible)
	}
	if o.counter != nil {
		o.counter(o.visibleCount(), len(o.entries))
	}
}

func (o *Orchestrator) reorder() {
	ordering.Sort(o.entries, o.sort, func(e *entry, field string) string {
		return e.view.Field(field)
	}, o.locale)
	for i, e := range o.entries {
		e.view.SetPosition(i)
	}
}

func (o *Orchestrator) visibleCount() int {
	n := 0
	for _, e := range o.entries {
		if e.visible {
			n++
		}
	}
	return n
}
