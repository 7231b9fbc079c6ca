package repositories

// Page selects a window of a list result
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to [1,max] with defaultLimit for non-positive limits.
// Negative offsets become zero.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
