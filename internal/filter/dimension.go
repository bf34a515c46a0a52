package filter

import "maps"

// FieldFunc reads a named field of an item as text; absent fields read as "".
type FieldFunc func(field string) string

// Dimension is a named filter axis bound to an item field.
type Dimension struct {
	Name  string
	Field string
	Mode  Mode
	// Derive, when set, transforms the raw field value before comparison.
	Derive func(string) string
}

// value extracts the comparable value of the dimension from an item.
func (d Dimension) value(get FieldFunc) string {
	v := get(d.Field)
	if d.Derive != nil {
		v = d.Derive(v)
	}
	return v
}

// YearPrefix keeps the leading four characters of a date string.
func YearPrefix(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// State maps each dimension name to All or a selected value.
type State map[string]string

// NewState returns a state with every dimension set to All.
func NewState(dims []Dimension) State {
	s := make(State, len(dims))
	for _, d := range dims {
		s[d.Name] = All
	}
	return s
}

// Clone returns a copy of the state.
func (s State) Clone() State {
	return maps.Clone(s)
}

// Set selects value for a recognized dimension. Unrecognized dimensions are
// ignored and Set reports false.
func (s State) Set(dimension, value string) bool {
	if _, ok := s[dimension]; !ok {
		return false
	}
	if value == "" {
		value = All
	}
	s[dimension] = value
	return true
}

// Matcher evaluates a State against items over a fixed set of dimensions.
type Matcher struct {
	dims []Dimension
}

// NewMatcher creates a Matcher for the given dimensions.
func NewMatcher(dims []Dimension) *Matcher {
	return &Matcher{dims: dims}
}

// Dimensions returns the dimensions the matcher knows about.
func (m *Matcher) Dimensions() []Dimension {
	return m.dims
}

// Match reports whether the item read by get passes every non-All dimension of state.
// Entries of state that name no known dimension are ignored.
func (m *Matcher) Match(get FieldFunc, state State) bool {
	for _, d := range m.dims {
		want, ok := state[d.Name]
		if !ok || want == All {
			continue
		}
		if !Matches(d.value(get), want, d.Mode) {
			return false
		}
	}
	return true
}
