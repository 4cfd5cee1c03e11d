package services

import "strings"

// JaccardSimilarity returns |A∩B| and |A∩B| / |A∪B| over the deduplicated tag sets.
// Two empty sets have similarity 0.
func JaccardSimilarity(a, b []string) (common int, similarity float64) {
	setA := tagSet(a)
	setB := tagSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0, 0
	}
	for t := range setA {
		if _, ok := setB[t]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return common, float64(common) / float64(union)
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}
