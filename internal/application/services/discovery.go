package services

import (
	"sort"
	"strings"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// FilterMechanics applies the text and category filters and orders the survivors
// by trust score, highest first. The input slice is not modified.
//
// A non-empty query keeps mechanics whose business name, description, or any
// service name or category label contains it, case-insensitively. The query is
// matched as given: surrounding spaces are part of the needle. A category keeps
// mechanics offering at least one service in it. Both filters must pass when set.
// Equal scores fall back to total reviews (desc), business name (asc, case-insensitive), id (asc).
func FilterMechanics(mechanics []*entities.Mechanic, query string, category *entities.ServiceCategory) []*entities.Mechanic {
	needle := strings.ToLower(query)

	out := make([]*entities.Mechanic, 0, len(mechanics))
	for _, m := range mechanics {
		if m == nil {
			continue
		}
		if category != nil && !m.HasCategory(*category) {
			continue
		}
		if needle != "" && !matchesText(m, needle) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rankBefore(out[i], out[j])
	})
	return out
}

func matchesText(m *entities.Mechanic, needle string) bool {
	if strings.Contains(strings.ToLower(m.BusinessName), needle) ||
		strings.Contains(strings.ToLower(m.Description), needle) {
		return true
	}
	for _, s := range m.Services {
		if strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.Category.Label()), needle) {
			return true
		}
	}
	return false
}

func rankBefore(a, b *entities.Mechanic) bool {
	if a.TrustScore != b.TrustScore {
		return a.TrustScore > b.TrustScore
	}
	if a.TotalReviews != b.TotalReviews {
		return a.TotalReviews > b.TotalReviews
	}
	an, bn := strings.ToLower(a.BusinessName), strings.ToLower(b.BusinessName)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}
