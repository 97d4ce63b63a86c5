package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/service"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func printJSON(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		_, err = w.Write(raw)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderStats(w io.Writer, s *query.Stats) {
	if s == nil {
		return
	}
	fmt.Fprintf(w, "Total: %d  In Progress: %d  Completed: %d  Delayed: %d\n\n", s.Total, s.InProgress, s.Completed, s.Delayed)
}

func renderWorkItems(w io.Writer, items []model.WorkItem, empty string) error {
	if len(items) == 0 {
		fmt.Fprintln(w, empty)
		return nil
	}
	tw := newTable(w)
	row(tw, "KEY", "TITLE", "ASSIGNED TO", "PRIORITY", "STATUS", "START", "DUE")
	for _, it := range items {
		row(tw, it.Key, it.Title, orDash(it.AssignedTo), orDash(it.Priority), orDash(it.Status), orDash(it.StartDate), orDash(it.DueDate))
	}
	return tw.Flush()
}

func renderSprints(w io.Writer, view service.ListView[model.Sprint]) error {
	renderStats(w, view.Stats)
	items := make([]model.WorkItem, 0, len(view.Items))
	for _, sp := range view.Items {
		items = append(items, sp.WorkItem)
	}
	return renderWorkItems(w, items, "No sprints found.")
}

func renderIssues(w io.Writer, view service.ListView[model.Issue]) error {
	renderStats(w, view.Stats)
	if len(view.Items) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}
	tw := newTable(w)
	row(tw, "KEY", "TITLE", "ASSIGNEE", "RAISED BY", "PRIORITY", "STATUS", "DUE")
	for _, i := range view.Items {
		assignee := i.AssignedTo
		if i.AssigneeName != "" {
			assignee = i.AssigneeName + " (" + i.AssignedTo + ")"
		}
		raisedBy := i.AssignedBy
		if i.AssignerName != "" {
			raisedBy = i.AssignerName
		}
		row(tw, i.Key, i.Title, orDash(assignee), orDash(raisedBy), orDash(i.Priority), orDash(i.Status), orDash(i.DueDate))
	}
	return tw.Flush()
}

func renderEmployees(w io.Writer, items []model.Employee) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No employees found.")
		return nil
	}
	tw := newTable(w)
	row(tw, "KEY", "EMPID", "NAME", "DEPARTMENT", "ROLE", "EMAIL")
	for _, e := range items {
		row(tw, e.Key, e.EmpID, e.Name, orDash(e.Department), orDash(e.Role), orDash(e.Email))
	}
	return tw.Flush()
}

func renderRequirements(w io.Writer, view service.ListView[model.Requirement]) error {
	renderStats(w, view.Stats)
	if len(view.Items) == 0 {
		fmt.Fprintln(w, "No requirements found.")
		return nil
	}
	tw := newTable(w)
	row(tw, "KEY", "TITLE", "APPLICATION", "PRIORITY", "STATUS", "DUE")
	for _, q := range view.Items {
		row(tw, q.Key, q.Title, orDash(q.ApplicationName), orDash(q.Priority), orDash(q.Status), orDash(q.DueDate))
	}
	return tw.Flush()
}

// requirementDetail is the detail response split in two. The requirement
// has its own UnmarshalJSON, so the logs are decoded in a second pass.
type requirementDetail struct {
	Requirement model.Requirement
	Activity    []model.KeyedEntry
	Thread      []model.KeyedEntry
}

func decodeRequirementDetail(raw []byte) (requirementDetail, error) {
	var d requirementDetail
	if err := json.Unmarshal(raw, &d.Requirement); err != nil {
		return d, err
	}
	var logs struct {
		Activity []model.KeyedEntry `json:"activity"`
		Thread   []model.KeyedEntry `json:"thread"`
	}
	if err := json.Unmarshal(raw, &logs); err != nil {
		return d, err
	}
	d.Activity, d.Thread = logs.Activity, logs.Thread
	return d, nil
}

func renderEntries(w io.Writer, title string, entries []model.KeyedEntry) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, e := range entries {
		when := "-"
		if e.Timestamp != 0 {
			when = e.Timestamp.Time().Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", when, orDash(e.CommentedBy), e.Text)
	}
}

func renderRequirementDetail(w io.Writer, d requirementDetail) error {
	q := d.Requirement
	tw := newTable(w)
	row(tw, "Key:", q.Key)
	row(tw, "Title:", q.Title)
	row(tw, "Application:", orDash(q.ApplicationName))
	row(tw, "Purpose:", orDash(q.Purpose))
	row(tw, "Department:", orDash(q.Department))
	row(tw, "Assigned:", orDash(q.AssignedEmployee))
	row(tw, "Priority:", orDash(q.Priority))
	row(tw, "Status:", orDash(q.Status))
	row(tw, "Start / Due:", orDash(q.StartDate)+" / "+orDash(q.DueDate))
	for _, a := range q.Attachments {
		row(tw, "Attachment:", a.Name+" "+a.URL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	renderEntries(w, "Activity", d.Activity)
	renderEntries(w, "Comments", d.Thread)
	return nil
}

func renderDashboard(w io.Writer, d service.Dashboard) error {
	tw := newTable(w)
	for _, c := range d.Cards {
		row(tw, c.Title+":", fmt.Sprint(c.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", d.RecentTitle)
	items := make([]model.WorkItem, 0, len(d.RecentSprints))
	for _, sp := range d.RecentSprints {
		items = append(items, sp.WorkItem)
	}
	return renderWorkItems(w, items, "No sprints found.")
}

func renderAudit(w io.Writer, entries []repository.AuditEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No audit entries.")
		return nil
	}
	tw := newTable(w)
	row(tw, "TIME", "ACTOR", "ENTITY", "ACTION", "KEY", "OUTCOME")
	for _, e := range entries {
		row(tw, e.CreatedAt.Local().Format(time.DateTime), e.Actor, e.Entity, e.Action, orDash(e.Key), e.Outcome)
	}
	return tw.Flush()
}

func renderEvent(w io.Writer, e contractsmq.RecordChanged) {
	fmt.Fprintf(w, "%s  %-12s %-8s %s %s by %s\n",
		e.OccurredAt.Local().Format(time.DateTime), e.Entity, e.Action, e.Key, orDash(e.Title), orDash(e.ActorEmpID))
}
