package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrMissingPetID = errors.New("pet id is required")

// Set is an insertion-ordered set of pet ids with constant time membership.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet builds a set from ids, dropping blanks and repeats.
func NewSet(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s *Set) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Set) Len() int { return len(s.order) }

// IDs returns the members in insertion order.
func (s *Set) IDs() []string {
	return append([]string{}, s.order...)
}

// Encode serialises the set as a JSON array.
func (s *Set) Encode() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// DecodeSet parses a persisted set. A corrupt blob yields an empty set together
// with the parse error so the caller can report it.
func DecodeSet(blob []byte) (*Set, error) {
	if len(blob) == 0 {
		return NewSet(), nil
	}
	var ids []string
	if err := json.Unmarshal(blob, &ids); err != nil {
		return NewSet(), err
	}
	return NewSet(ids...), nil
}
