package browse

import (
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// RecordView is an ItemView over a stored record, used where no markup exists.
type RecordView struct {
	Record   model.Record
	Visible  bool
	Position int
}

// NewRecordViews wraps records as item views.
func NewRecordViews(records []model.Record) []*RecordView {
	views := make([]*RecordView, len(records))
	for i, r := range records {
		views[i] = &RecordView{Record: r, Position: i}
	}
	return views
}

// ItemViews converts record views to the interface slice the Orchestrator takes.
func ItemViews(views []*RecordView) []ItemView {
	items := make([]ItemView, len(views))
	for i, v := range views {
		items[i] = v
	}
	return items
}

// Field implements ItemView.
func (v *RecordView) Field(name string) string {
	return v.Record.String(name)
}

// SetVisible implements ItemView.
func (v *RecordView) SetVisible(visible bool) {
	v.Visible = visible
}

// SetPosition implements ItemView.
func (v *RecordView) SetPosition(index int) {
	v.Position = index
}
