package query

import (
	"slices"
	"strings"
	"time"
)

// Viewer is who a list is built for.
type Viewer struct {
	EmpID string
	Role  string
}

func (v Viewer) IsManager() bool { return v.Role == "manager" }

// Options describe one list view.
type Options[T any] struct {
	Viewer Viewer
	// Owner enables the role filter; nil shows every item to everyone.
	Owner func(T) string
	// Text is what Search matches against.
	Text   func(T) string
	Search string
	Sort   SortState
	// Columns holds the comparators of the sortable columns.
	Columns map[string]func(a, b T) int
	// Default orders the list when no column sort is active.
	Default func([]T)
}

// Apply runs role filter, search, then sort. items is not modified.
func Apply[T any](items []T, opt Options[T]) []T {
	out := make([]T, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(opt.Search))

	for _, item := range items {
		if opt.Owner != nil && !opt.Viewer.IsManager() && opt.Owner(item) != opt.Viewer.EmpID {
			continue
		}
		if search != "" && (opt.Text == nil || !strings.Contains(strings.ToLower(opt.Text(item)), search)) {
			continue
		}
		out = append(out, item)
	}

	if cmp, ok := opt.Columns[opt.Sort.Column]; ok && opt.Sort.Active() {
		slices.SortStableFunc(out, func(a, b T) int {
			if opt.Sort.Dir == SortDesc {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
		return out
	}
	if opt.Default != nil {
		opt.Default(out)
	}
	return out
}

// NewestFirst orders by timeOf descending; items without a time go last.
func NewestFirst[T any](timeOf func(T) (time.Time, bool)) func([]T) {
	return func(items []T) {
		slices.SortStableFunc(items, func(a, b T) int {
			ta, okA := timeOf(a)
			tb, okB := timeOf(b)
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return 1
			case !okB:
				return -1
			}
			return tb.Compare(ta)
		})
	}
}

// Reversed orders the latest added (last in key order) first.
func Reversed[T any](items []T) {
	slices.Reverse(items)
}

// FoldCompare compares strings case-insensitively.
func FoldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Recent returns the last n items, newest (last) first.
func Recent[T any](items []T, n int) []T {
	start := max(len(items)-n, 0)
	out := slices.Clone(items[start:])
	slices.Reverse(out)
	return out
}
