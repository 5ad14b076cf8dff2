package domain

import "strings"

// Criteria narrows the browse listing. Empty fields match everything.
type Criteria struct {
	Species Species
	Size    Size
	// Query matches name, breed or location, case-insensitively.
	Query string
}

// Normalize lower-cases the filters and treats "all" as no filter.
func (c Criteria) Normalize() Criteria {
	c.Species = Species(normalizeFilter(string(c.Species)))
	c.Size = Size(normalizeFilter(string(c.Size)))
	c.Query = strings.TrimSpace(c.Query)
	return c
}

// Matches reports whether p satisfies every criterion.
func (c Criteria) Matches(p *Pet) bool {
	if p == nil {
		return false
	}
	c = c.Normalize()
	if c.Species != "" && p.Species != c.Species {
		return false
	}
	if c.Size != "" && p.Size != c.Size {
		return false
	}
	if c.Query == "" {
		return true
	}
	q := strings.ToLower(c.Query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Breed), q) ||
		strings.Contains(strings.ToLower(p.Location), q)
}

func normalizeFilter(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "all" {
		return ""
	}
	return v
}
