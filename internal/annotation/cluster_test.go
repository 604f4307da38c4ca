package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterLabels_SubstringGrouping(t *testing.T) {
	t.Parallel()

	groups := ClusterLabels([]string{"Method", "Methods", "Result"}, 3)

	require.Len(t, groups, 2)
	assert.Equal(t, "Method", groups[0].Name)
	assert.Equal(t, []string{"Method", "Methods"}, groups[0].Members)
	assert.Equal(t, "Result", groups[1].Name)
	assert.Equal(t, []string{"Result"}, groups[1].Members)
}

func TestClusterLabels_Deterministic(t *testing.T) {
	t.Parallel()

	labels := []string{"discussion", "Results", "result", "methodology", "Methods", "background"}

	first := ClusterLabels(labels, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClusterLabels(labels, 3), "output must be reproducible across calls")
	}

	// Input order must not matter either.
	reversed := make([]string, len(labels))
	for i, l := range labels {
		reversed[len(labels)-1-i] = l
	}
	assert.Equal(t, first, ClusterLabels(reversed, 3))
}

func TestClusterLabels_EditDistanceGrouping(t *testing.T) {
	t.Parallel()

	// "analysis" vs "analyses" is distance 1 on the lowercased forms.
	groups := ClusterLabels([]string{"analysis", "analyses"}, 2)

	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"analyses", "analysis"}, groups[0].Members)
}

func TestClusterLabels_EdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		labels     []string
		wantGroups int
	}{
		{"empty set", nil, 0},
		{"single label", []string{"conclusion"}, 1},
		{"exact duplicates collapse", []string{"conclusion", "conclusion"}, 1},
		{"empty labels filtered", []string{"", "conclusion"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			groups := ClusterLabels(tt.labels, DefaultClusterThreshold)
			assert.Len(t, groups, tt.wantGroups)
			for _, g := range groups {
				assert.NotEmpty(t, g.Members)
				assert.Equal(t, g.Name, g.Members[0], "group is named after its representative")
			}
		})
	}
}

func TestClusterLabels_CaseInsensitiveDuplicates(t *testing.T) {
	t.Parallel()

	// "method" and "Method" are distinct strings but Same() under clustering.
	groups := ClusterLabels([]string{"method", "Method"}, 3)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
}

func TestClusterLabels_PartitionsInput(t *testing.T) {
	t.Parallel()

	labels := []string{"intro", "introduction", "methods", "method", "results", "conclusion", "limitations"}
	groups := ClusterLabels(labels, 3)

	seen := make(map[string]int)
	for _, g := range groups {
		for _, m := range g.Members {
			seen[m]++
		}
	}
	for _, l := range labels {
		assert.Equal(t, 1, seen[l], "label %q must appear in exactly one group", l)
	}
}
