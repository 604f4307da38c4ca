package classifier

import (
	"sort"
	"strings"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
)

// NormalizeGroups reconciles provider output against the canonical label set.
//
// Providers are free-text generators, so their output cannot be trusted to be
// a partition: members are matched case-insensitively against the canonical
// labels and rewritten to the canonical spelling, unknown members are dropped,
// a label claimed by two groups stays in the first, and any canonical label
// the provider omitted becomes its own singleton group. Empty groups are
// removed and a group with no name is named after its first member. Groups
// are sorted by name so repeated runs over the same labels compare equal.
func NormalizeGroups(labels []string, groups []annotation.TagGroup) []annotation.TagGroup {
	canonical := make(map[string]string, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := canonical[key]; !ok {
			canonical[key] = l
		}
	}

	claimed := make(map[string]bool, len(canonical))
	normalized := make([]annotation.TagGroup, 0, len(groups))

	for _, g := range groups {
		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			canon, ok := canonical[strings.ToLower(m)]
			if !ok || claimed[canon] {
				continue
			}
			claimed[canon] = true
			members = append(members, canon)
		}
		if len(members) == 0 {
			continue
		}
		sort.Strings(members)

		name := g.Name
		if name == "" {
			name = members[0]
		}
		normalized = append(normalized, annotation.TagGroup{Name: name, Members: members})
	}

	// Labels the provider never mentioned still belong in the report
	leftovers := make([]string, 0)
	for _, canon := range canonical {
		if !claimed[canon] {
			leftovers = append(leftovers, canon)
		}
	}
	sort.Strings(leftovers)
	for _, l := range leftovers {
		normalized = append(normalized, annotation.TagGroup{Name: l, Members: []string{l}})
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Name < normalized[j].Name
	})

	return normalized
}
