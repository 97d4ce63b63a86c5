package model

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusPending    = "Pending"
)

// WorkItem holds the fields sprints and issues share.
type WorkItem struct {
	Key             string    `json:"key,omitempty"`
	Title           string    `json:"title"`
	ApplicationName string    `json:"applicationname"`
	Requirement     string    `json:"requirement,omitempty"`
	Department      string    `json:"department"`
	AssignedTo      string    `json:"assigned_to"`
	Priority        string    `json:"priority"`
	Status          string    `json:"status"`
	StartDate       string    `json:"start_date"`
	DueDate         string    `json:"due_date"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       Timestamp `json:"createdAt,omitempty"`
}

func (w *WorkItem) decode(r gjson.Result) {
	*w = WorkItem{
		Key:             field(r, "key"),
		Title:           field(r, "title"),
		ApplicationName: field(r, "applicationname", "applicationName"),
		Requirement:     field(r, "requirement"),
		Department:      field(r, "department", "dept"),
		AssignedTo:      field(r, "assigned_to", "assignedTo"),
		Priority:        field(r, "priority"),
		Status:          field(r, "status"),
		StartDate:       field(r, "start_date", "startDate"),
		DueDate:         field(r, "due_date", "dueDate"),
		Description:     field(r, "description"),
		CreatedAt:       timestampOf(r.Get("createdAt")),
	}
}

func (w *WorkItem) SetKey(key string) { w.Key = key }

// Owner is the empid the item is assigned to.
func (w WorkItem) Owner() string { return w.AssignedTo }

// SortTime orders items newest first: start date, else creation time.
func (w WorkItem) SortTime() (time.Time, bool) {
	if tm, ok := ParseDate(w.StartDate); ok {
		return tm, true
	}
	if w.CreatedAt != 0 {
		return w.CreatedAt.Time(), true
	}
	return time.Time{}, false
}

// Delayed reports an unfinished item whose due date has passed. A date-only
// due date means midnight UTC, so an item due today counts once the day starts.
func (w WorkItem) Delayed(now time.Time) bool {
	return delayed(w.Status, w.DueDate, now)
}

func delayed(status, dueDate string, now time.Time) bool {
	if status == StatusCompleted {
		return false
	}
	due, ok := ParseDate(dueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

func (w WorkItem) GetStatus() string { return w.Status }
func (w WorkItem) GetTitle() string  { return w.Title }

type Sprint struct {
	WorkItem
}

func (s *Sprint) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	s.WorkItem.decode(r)
	return nil
}

type Issue struct {
	WorkItem
	AssignedBy   string `json:"assigned_by,omitempty"`
	AssignerName string `json:"assigner_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}

func (i *Issue) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	i.WorkItem.decode(r)
	i.AssignedBy = field(r, "assigned_by", "assignedBy")
	i.AssignerName = field(r, "assigner_name", "assignerName")
	i.AssigneeName = field(r, "assignee_name", "assigneeName")
	return nil
}

// EmployeeCreated reports issues raised by someone other than a manager.
func (i Issue) EmployeeCreated() bool {
	return i.AssignedBy != "" && strings.ToLower(i.AssignedBy) != RoleManager
}
