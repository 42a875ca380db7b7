package alerts

import (
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

// Capacity is the number of alerts shown to operators.
const Capacity = 5

// Feed is the operator-facing alert list. Scan results are merged in newest
// first; older alerts fall off the end.
type Feed struct {
	store    ports.AlertStore
	capacity int
}

var _ ports.AlertPublisher = (*Feed)(nil)

func New(store ports.AlertStore) *Feed { return &Feed{store: store, capacity: Capacity} }

func (f *Feed) Publish(alerts []domain.SecurityAlert) {
	if len(alerts) == 0 {
		return
	}
	f.store.Prepend(alerts, f.capacity)
}

func (f *Feed) Recent() []domain.SecurityAlert { return f.store.Recent() }
