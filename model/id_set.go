package model

import "encoding/json"

// IDSet is an insertion-ordered set of entity uuids. The zero value is an
// empty set ready to use. IDSet is not safe for concurrent mutation, the
// stores are the place where concurrent list updates are serialized.
type IDSet struct {
	ids   []string
	index map[string]struct{}
}

func NewIDSet(ids ...string) IDSet {
	s := IDSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id if it is not a member yet. Returns true if the set changed.
func (s *IDSet) Add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove drops id from the set. Returns true if the set changed.
func (s *IDSet) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, member := range s.ids {
		if member == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s IDSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s IDSet) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the members in insertion order, never nil.
func (s IDSet) Slice() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
