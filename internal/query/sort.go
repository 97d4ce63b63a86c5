package query

import "strings"

type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

func (d SortDir) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return ""
	}
}

// SortState is the active column sort of a list view. Only one column is
// active at a time.
type SortState struct {
	Column string  `json:"column,omitempty"`
	Dir    SortDir `json:"-"`
}

// Cycle activates column: none -> asc -> desc -> none on the same column,
// asc for a different one.
func (s SortState) Cycle(column string) SortState {
	if s.Column != column || s.Dir == SortNone {
		return SortState{Column: column, Dir: SortAsc}
	}
	if s.Dir == SortAsc {
		return SortState{Column: column, Dir: SortDesc}
	}
	return SortState{}
}

func (s SortState) Active() bool {
	return s.Column != "" && s.Dir != SortNone
}

// ParseSort reads the sort/order query parameters; order defaults to asc.
func ParseSort(column, order string) SortState {
	column = strings.TrimSpace(column)
	if column == "" {
		return SortState{}
	}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "desc":
		return SortState{Column: column, Dir: SortDesc}
	case "none":
		return SortState{}
	default:
		return SortState{Column: column, Dir: SortAsc}
	}
}
