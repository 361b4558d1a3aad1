package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

type ExamType string

const (
	ExamTypeListening ExamType = "listening"
	ExamTypeReading   ExamType = "reading"
)

// ListeningMarker is the partId prefix letter of listening parts ("l1-...").
const ListeningMarker = "l"

// ExamTypes lists the exam types in presentation order.
var ExamTypes = []ExamType{ExamTypeListening, ExamTypeReading}

func (t ExamType) IsValid() bool {
	return t == ExamTypeListening || t == ExamTypeReading
}

// ExamLayout maps each exam type to its ordered part numbers.
type ExamLayout map[ExamType][]int

// DefaultExamLayout returns the deployed part structure: four listening parts, five reading parts.
func DefaultExamLayout() ExamLayout {
	return ExamLayout{
		ExamTypeListening: {1, 2, 3, 4},
		ExamTypeReading:   {1, 2, 3, 4, 5},
	}
}

// Parts returns the part numbers of examType in ascending order.
func (l ExamLayout) Parts(examType ExamType) ([]int, bool) {
	parts, ok := l[examType]
	if !ok {
		return nil, false
	}
	sorted := append([]int(nil), parts...)
	sort.Ints(sorted)
	return sorted, true
}

// Validate checks that every exam type is known and every part list is non-empty, positive and unique.
func (l ExamLayout) Validate() error {
	for examType, parts := range l {
		if !examType.IsValid() {
			return fmt.Errorf("unknown exam type %q", examType)
		}
		if len(parts) == 0 {
			return fmt.Errorf("exam type %q has no parts", examType)
		}
		seen := make(map[int]struct{}, len(parts))
		for _, p := range parts {
			if p <= 0 {
				return fmt.Errorf("exam type %q: part number %d must be positive", examType, p)
			}
			if _, dup := seen[p]; dup {
				return fmt.Errorf("exam type %q: duplicate part number %d", examType, p)
			}
			seen[p] = struct{}{}
		}
	}
	return nil
}

// ContentInstance is one immutable piece of exam content. Only the id is interpreted;
// the rest of the document is passed through to clients untouched.
type ContentInstance struct {
	ID  string
	Raw json.RawMessage
}

func (c ContentInstance) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return json.Marshal(map[string]string{"id": c.ID})
	}
	return c.Raw, nil
}

func (c *ContentInstance) UnmarshalJSON(data []byte) error {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	c.ID = head.ID
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Catalog is one (exam type, part) bucket keyed by instance key. The key is distinct
// from the instance id.
type Catalog map[string]ContentInstance

// IDs returns the set of instance ids in the catalog.
func (c Catalog) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c))
	for _, inst := range c {
		ids[inst.ID] = struct{}{}
	}
	return ids
}

// SortedKeys returns the instance keys in lexical order.
func (c Catalog) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
