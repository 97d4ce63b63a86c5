package model

import (
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultRequirementPriority = "Medium"

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type LogEntry struct {
	Text        string    `json:"text"`
	CommentedBy string    `json:"commentedBy,omitempty"`
	Timestamp   Timestamp `json:"timestamp"`
}

// KeyedEntry is a LogEntry with the key it is stored under.
type KeyedEntry struct {
	ID string `json:"id"`
	LogEntry
}

type Requirement struct {
	Key              string              `json:"key,omitempty"`
	ApplicationName  string              `json:"applicationName"`
	Title            string              `json:"title"`
	Purpose          string              `json:"purpose,omitempty"`
	Department       string              `json:"department,omitempty"`
	AssignedEmployee string              `json:"assignedEmployee,omitempty"`
	StartDate        string              `json:"startDate,omitempty"`
	DueDate          string              `json:"dueDate,omitempty"`
	Priority         string              `json:"priority"`
	Status           string              `json:"status"`
	Attachments      []Attachment        `json:"attachments,omitempty"`
	ActivityLog      map[string]LogEntry `json:"activity_log,omitempty"`
	Comments         map[string]LogEntry `json:"comments,omitempty"`
	CreatedAt        Timestamp           `json:"createdAt,omitempty"`
	UpdatedAt        Timestamp           `json:"updatedAt,omitempty"`
}

func (q *Requirement) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	*q = Requirement{
		Key:              field(r, "key"),
		ApplicationName:  field(r, "applicationName", "applicationname"),
		Title:            field(r, "title"),
		Purpose:          field(r, "purpose", "description"),
		Department:       field(r, "department"),
		AssignedEmployee: field(r, "assignedEmployee", "assigned_to"),
		StartDate:        field(r, "startDate", "start_date"),
		DueDate:          field(r, "dueDate", "due_date"),
		Priority:         field(r, "priority"),
		Status:           field(r, "status"),
		Attachments:      decodeAttachments(r.Get("attachments")),
		ActivityLog:      decodeEntries(r.Get("activity_log")),
		Comments:         decodeEntries(r.Get("comments")),
		CreatedAt:        timestampOf(r.Get("createdAt")),
		UpdatedAt:        timestampOf(r.Get("updatedAt")),
	}
	return nil
}

func (q *Requirement) SetKey(key string) { q.Key = key }

func (q Requirement) Owner() string     { return q.AssignedEmployee }
func (q Requirement) GetStatus() string { return q.Status }
func (q Requirement) GetTitle() string  { return q.Title }

func (q Requirement) Delayed(now time.Time) bool {
	return delayed(q.Status, q.DueDate, now)
}

// Activity returns the activity log oldest first.
func (q Requirement) Activity() []KeyedEntry { return sortedEntries(q.ActivityLog) }

// CommentList returns comments oldest first.
func (q Requirement) CommentList() []KeyedEntry { return sortedEntries(q.Comments) }

// attachments may be stored as an array or as an object keyed by index
func decodeAttachments(v gjson.Result) []Attachment {
	if !v.IsArray() && !v.IsObject() {
		return nil
	}
	var out []Attachment
	v.ForEach(func(_, a gjson.Result) bool {
		if a.Type == gjson.Null {
			return true
		}
		out = append(out, Attachment{Name: field(a, "name"), URL: field(a, "url")})
		return true
	})
	return out
}

func decodeEntries(v gjson.Result) map[string]LogEntry {
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]LogEntry)
	v.ForEach(func(k, e gjson.Result) bool {
		if e.Type == gjson.Null {
			return true
		}
		out[k.String()] = LogEntry{
			Text:        field(e, "text"),
			CommentedBy: field(e, "commentedBy"),
			Timestamp:   timestampOf(e.Get("timestamp")),
		}
		return true
	})
	return out
}

func sortedEntries(m map[string]LogEntry) []KeyedEntry {
	out := make([]KeyedEntry, 0, len(m))
	for id, e := range m {
		out = append(out, KeyedEntry{ID: id, LogEntry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}
