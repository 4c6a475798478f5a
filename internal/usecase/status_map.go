package usecase

import (
	"legal-booking/internal/data/entity"
)

// StatusMapping translates gateway-native payment statuses into domain
// record statuses. It is a policy object: deployments can widen or narrow
// the sets, the defaults below are deliberately conservative.
type StatusMapping struct {
	confirm map[string]struct{}
	cancel  map[string]struct{}
}

func NewStatusMapping(confirm, cancel []string) StatusMapping {
	m := StatusMapping{
		confirm: make(map[string]struct{}, len(confirm)),
		cancel:  make(map[string]struct{}, len(cancel)),
	}
	for _, s := range confirm {
		m.confirm[s] = struct{}{}
	}
	for _, s := range cancel {
		m.cancel[s] = struct{}{}
	}
	return m
}

func DefaultStatusMapping() StatusMapping {
	return NewStatusMapping(
		[]string{"RECEIVED", "CONFIRMED", "PAID", "COMPLETED", "APPROVED"},
		[]string{"OVERDUE", "CANCELLED", "REFUNDED", "DELETED"},
	)
}

// Target returns the domain status a gateway status maps to. The second
// return is false for statuses that cause no transition (log only).
func (m StatusMapping) Target(gatewayStatus string) (entity.RecordStatus, bool) {
	if _, ok := m.confirm[gatewayStatus]; ok {
		return entity.RecordStatusConfirmed, true
	}
	if _, ok := m.cancel[gatewayStatus]; ok {
		return entity.RecordStatusCancelled, true
	}
	return "", false
}
