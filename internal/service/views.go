package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/session"
	"sprint-tracker/pkg/logger"
)

// ListParams come from the list query string.
type ListParams struct {
	Search string
	Sort   query.SortState
}

// ListView is a role-filtered, searched and sorted list with its stats.
// Stats cover the role-filtered set, before the search.
type ListView[T any] struct {
	Items []T             `json:"items"`
	Stats *query.Stats    `json:"stats,omitempty"`
	Sort  query.SortState `json:"sort"`
	Order string          `json:"order,omitempty"`
}

func newListView[T any](items []T, sort query.SortState) ListView[T] {
	return ListView[T]{Items: items, Sort: sort, Order: sort.Dir.String()}
}

func viewerOf(s session.Session) query.Viewer {
	return query.Viewer{EmpID: s.EmpID, Role: s.Role}
}

// listOrEmpty loads a collection; a failed read shows as an empty list.
func listOrEmpty[T any](ctx context.Context, log *zap.Logger, collection string, load func(context.Context) ([]T, error)) []T {
	items, err := load(ctx)
	if err != nil {
		logger.WithTrace(ctx, log).Warn("list unavailable, showing no data",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return []T{}
	}
	return items
}

func workItemColumns[T any](get func(T) model.WorkItem) map[string]func(a, b T) int {
	text := func(f func(model.WorkItem) string) func(a, b T) int {
		return func(a, b T) int { return query.FoldCompare(f(get(a)), f(get(b))) }
	}
	date := func(f func(model.WorkItem) string) func(a, b T) int {
		return func(a, b T) int {
			ta, _ := model.ParseDate(f(get(a)))
			tb, _ := model.ParseDate(f(get(b)))
			return ta.Compare(tb)
		}
	}
	return map[string]func(a, b T) int{
		"title":       text(func(w model.WorkItem) string { return w.Title }),
		"department":  text(func(w model.WorkItem) string { return w.Department }),
		"priority":    text(func(w model.WorkItem) string { return w.Priority }),
		"status":      text(func(w model.WorkItem) string { return w.Status }),
		"assigned_to": text(func(w model.WorkItem) string { return w.AssignedTo }),
		"start_date":  date(func(w model.WorkItem) string { return w.StartDate }),
		"due_date":    date(func(w model.WorkItem) string { return w.DueDate }),
	}
}

func workItemOptions[T any](sess session.Session, p ListParams, get func(T) model.WorkItem) query.Options[T] {
	return query.Options[T]{
		Viewer:  viewerOf(sess),
		Owner:   func(item T) string { return get(item).Owner() },
		Text:    func(item T) string { return get(item).Title },
		Search:  p.Search,
		Sort:    p.Sort,
		Columns: workItemColumns(get),
		Default: query.NewestFirst(func(item T) (time.Time, bool) { return get(item).SortTime() }),
	}
}

// roleView returns the role-filtered set (for stats) and the searched, sorted view.
func roleView[T any](items []T, opt query.Options[T]) (filtered, view []T) {
	unsearched := opt
	unsearched.Search = ""
	unsearched.Sort = query.SortState{}
	unsearched.Default = nil
	return query.Apply(items, unsearched), query.Apply(items, opt)
}
