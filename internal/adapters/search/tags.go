package search

import (
	"sort"
	"strings"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// MaxIndexedTags caps the tag list stored per document
const MaxIndexedTags = 100

// BuildMechanicTags collects lowercased, de-duplicated search terms for a mechanic:
// service names, category labels and wire values, city and state.
func BuildMechanicTags(m *entities.Mechanic) []string {
	if m == nil {
		return nil
	}

	set := make(map[string]struct{})
	for _, s := range m.Services {
		add(set, s.Name, s.Category.Label(), string(s.Category))
	}
	add(set, m.Location.City, m.Location.State)

	return toSlice(set, MaxIndexedTags)
}

func add(set map[string]struct{}, terms ...string) {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
}

func toSlice(set map[string]struct{}, limit int) []string {
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	sort.Strings(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
