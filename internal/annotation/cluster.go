package annotation

import (
	"sort"
	"strings"
)

// DefaultClusterThreshold is the edit-distance cutoff below which two labels
// are considered variants of each other.
const DefaultClusterThreshold = 3

// TagGroup is one cluster of semantically equivalent tag labels. Groups are
// derived fresh on every clustering call and never persisted by this
// package.
type TagGroup struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ClusterLabels partitions labels into named groups of similar labels.
//
// Distinct labels are sorted lexicographically to fix a total order, then
// scanned greedily: each unvisited label starts a group named after itself
// and absorbs every later unvisited label that is case-insensitively equal,
// a substring match in either direction, or within threshold edit distance
// of the lowercased representative. Groups are emitted in the order their
// representative was first visited, so the output is reproducible for a
// given input set and threshold.
//
// Duplicate input labels collapse into a single member. A threshold <= 0 is
// replaced by DefaultClusterThreshold. The cost is O(n^2) distance
// computations, which is fine for the tens of labels a single user
// accumulates.
func ClusterLabels(labels []string, threshold int) []TagGroup {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}

	distinct := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		distinct = append(distinct, l)
	}
	sort.Strings(distinct)

	if len(distinct) == 0 {
		return []TagGroup{}
	}

	visited := make(map[string]bool, len(distinct))
	groups := make([]TagGroup, 0, len(distinct))

	for _, rep := range distinct {
		if visited[rep] {
			continue
		}
		visited[rep] = true
		group := TagGroup{Name: rep, Members: []string{rep}}

		for _, candidate := range distinct {
			if visited[candidate] {
				continue
			}
			if labelsRelated(rep, candidate, threshold) {
				visited[candidate] = true
				group.Members = append(group.Members, candidate)
			}
		}

		groups = append(groups, group)
	}

	return groups
}

func labelsRelated(a, b string, threshold int) bool {
	if Same(a, b) {
		return true
	}
	if Contains(a, b) {
		return true
	}
	return Distance(strings.ToLower(a), strings.ToLower(b)) <= threshold
}
