package memory

import (
	"slices"
	"sync"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

// AlertStore is the bounded operator feed, newest first.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []domain.SecurityAlert
}

var _ ports.AlertStore = (*AlertStore)(nil)

func NewAlertStore() *AlertStore { return &AlertStore{} }

// Prepend puts alerts, in their given order, ahead of what is stored and
// truncates the feed to capacity.
func (s *AlertStore) Prepend(alerts []domain.SecurityAlert, capacity int) {
	if len(alerts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]domain.SecurityAlert, 0, len(alerts)+len(s.alerts))
	merged = append(merged, alerts...)
	merged = append(merged, s.alerts...)
	if capacity > 0 && len(merged) > capacity {
		merged = merged[:capacity]
	}
	s.alerts = merged
}

func (s *AlertStore) Recent() []domain.SecurityAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.alerts)
}
