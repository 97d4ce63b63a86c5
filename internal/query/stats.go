package query

import "time"

type Tracked interface {
	GetStatus() string
	Delayed(now time.Time) bool
}

// Stats are the summary cards shown above sprint, issue and requirement lists.
type Stats struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Delayed    int `json:"delayed"`
}

func StatsOf[T Tracked](items []T, now time.Time) Stats {
	s := Stats{Total: len(items)}
	for _, item := range items {
		switch item.GetStatus() {
		case "In Progress":
			s.InProgress++
		case "Completed":
			s.Completed++
		}
		if item.Delayed(now) {
			s.Delayed++
		}
	}
	return s
}

// Count returns how many items match pred.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}
