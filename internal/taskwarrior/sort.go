package taskwarrior

import (
	"fmt"
	"sort"
	"strings"
)

type sortKey struct {
	field     string
	ascending bool
}

// parseSortList turns "priority-,due+" into sort keys. Only the last
// character decides the direction.
func parseSortList(list string) []sortKey {
	var keys []sortKey
	for _, raw := range strings.Split(list, ",") {
		item := strings.Trim(strings.TrimSpace(raw), `/\`)
		if item == "" {
			continue
		}
		ascending := true
		if strings.HasSuffix(item, "-") {
			ascending = false
		}
		field := strings.Trim(item, "+-")
		field = strings.Trim(field, `/\`)
		if field == "" {
			continue
		}
		keys = append(keys, sortKey{field: field, ascending: ascending})
	}
	return keys
}

// SortTasks orders tasks by a Taskwarrior-style sort list. The first key that
// discriminates wins; full ties keep the incoming order. A field missing on
// one side sorts last when ascending and first when descending.
func SortTasks(tasks []Task, list string) []Task {
	keys := parseSortList(list)
	sorted := append([]Task(nil), tasks...)
	if len(keys) == 0 {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Fields, sorted[j].Fields
		for _, k := range keys {
			va, okA := lookup(a, k.field)
			vb, okB := lookup(b, k.field)
			switch {
			case !okA && !okB:
				continue
			case !okB:
				return k.ascending
			case !okA:
				return !k.ascending
			}

			c := compareValues(va, vb)
			if c == 0 {
				continue
			}
			if k.ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return sorted
}

func lookup(fields map[string]any, key string) (any, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func compareValues(a, b any) int {
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
