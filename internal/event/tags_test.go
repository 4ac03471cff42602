package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileTags(t *testing.T) {
	diff := ReconcileTags([]string{"b", "a", "c"}, []string{"d", "a", "a", "e"})
	assert.Equal(t, []string{"d", "e"}, diff.ToAdd)
	assert.Equal(t, []string{"b", "c"}, diff.ToRemove)
}

func TestReconcileTags_SameSetIsEmpty(t *testing.T) {
	diff := ReconcileTags([]string{"x", "y"}, []string{"y", "x", "y"})
	assert.True(t, diff.Empty())
}

func TestReconcileTags_ApplyingDiffReachesRequestedSet(t *testing.T) {
	existing := []string{"fair", "tech", "old"}
	requested := []string{"tech", "new", "fair"}

	diff := ReconcileTags(existing, requested)
	result := toSet(existing)
	for _, tag := range diff.ToRemove {
		delete(result, tag)
	}
	for _, tag := range diff.ToAdd {
		result[tag] = struct{}{}
	}

	assert.Equal(t, toSet(requested), result)
	assert.True(t, ReconcileTags(requested, requested).Empty())
}

func TestUniqueTags(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, uniqueTags([]string{"b", "a", "b"}))
	assert.Empty(t, uniqueTags(nil))
}
