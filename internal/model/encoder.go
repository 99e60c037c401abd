package model

import (
	"slices"
	"sort"
)

// LabelEncoder maps category strings to their index in a sorted class list.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

func FitLabelEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Transform returns the index of value, and false when value was not seen
// during fitting.
func (e *LabelEncoder) Transform(value string) (int, bool) {
	return slices.BinarySearch(e.Classes, value)
}

// TransformOrFirst encodes value, falling back to the first class for labels
// the encoder has never seen.
func (e *LabelEncoder) TransformOrFirst(value string) int {
	i, ok := e.Transform(value)
	if !ok {
		return 0
	}
	return i
}
