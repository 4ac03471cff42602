package event

import "sort"

// TagDiff is the minimal change turning one tag set into another.
type TagDiff struct {
	ToAdd    []string
	ToRemove []string
}

func (d TagDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// ReconcileTags compares two tag sets. Order and duplicates are ignored;
// both result slices are sorted.
func ReconcileTags(existing, requested []string) TagDiff {
	have := toSet(existing)
	want := toSet(requested)

	var diff TagDiff
	for tag := range have {
		if _, ok := want[tag]; !ok {
			diff.ToRemove = append(diff.ToRemove, tag)
		}
	}
	for tag := range want {
		if _, ok := have[tag]; !ok {
			diff.ToAdd = append(diff.ToAdd, tag)
		}
	}
	sort.Strings(diff.ToAdd)
	sort.Strings(diff.ToRemove)
	return diff
}

// uniqueTags drops duplicates and keeps first-seen order.
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
