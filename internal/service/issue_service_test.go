package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

func newIssueForm(title, assignedTo string) model.Issue {
	return model.Issue{WorkItem: model.WorkItem{
		Title:           title,
		ApplicationName: "Portal",
		Department:      "Engineering",
		AssignedTo:      assignedTo,
		Priority:        "High",
		Status:          "Pending",
		StartDate:       "2024-05-01",
		DueDate:         "2024-05-03",
	}}
}

func TestIssueCreate_EmployeeRaiserIsStamped(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.EmployeeCollection, "e1", map[string]string{"empid": "E200", "name": "Kiran", "department": "Engineering"})

	created, err := f.issues().Create(context.Background(), employee, newIssueForm("Crash on save", "e200"))
	require.NoError(t, err)

	assert.Equal(t, "E100", created.AssignedBy)
	assert.Equal(t, "Ravi", created.AssignerName)
	assert.Equal(t, "Kiran", created.AssigneeName)
	assert.NotZero(t, created.CreatedAt)

	doc, ok := f.srv.Doc(repository.IssueCollection, created.Key)
	require.True(t, ok)
	assert.Contains(t, string(doc), `"assigned_by":"E100"`)
	assert.NotContains(t, string(doc), `"key"`)
}

func TestIssueCreate_ManagerRaiser(t *testing.T) {
	f := newFixture(t)

	created, err := f.issues().Create(context.Background(), manager, newIssueForm("Crash on save", "E300"))
	require.NoError(t, err)

	assert.Equal(t, "manager", created.AssignedBy)
	assert.Equal(t, "Meera", created.AssignerName)
	assert.Empty(t, created.AssigneeName)
}

func TestIssueCreate_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.issues().Create(context.Background(), employee, model.Issue{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"applicationname", "title", "department", "assigned_to", "priority", "status", "start_date", "due_date"}, verr.Missing)
	assert.Zero(t, f.srv.Count(http.MethodPost, repository.IssueCollection))
}

func TestIssueUpdate_KeepsRaiser(t *testing.T) {
	f := newFixture(t)
	svc := f.issues()
	created, err := svc.Create(context.Background(), employee, newIssueForm("Crash on save", "E100"))
	require.NoError(t, err)

	form := newIssueForm("Crash on save", "E100")
	form.Status = "Completed"
	form.AssignedBy = "someone else"
	updated, err := svc.Update(context.Background(), manager, created.Key, form)
	require.NoError(t, err)

	assert.Equal(t, "E100", updated.AssignedBy)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Completed", updated.Status)
}

func TestIssueEmployeeCreated(t *testing.T) {
	f := newFixture(t)
	older := issueDoc("Older", "E100", "E300")
	older["createdAt"] = 1000
	newer := issueDoc("Newer", "E200", "E300")
	newer["start_date"] = "2024-05-02"
	newer["createdAt"] = 2000
	byManager := issueDoc("From manager", "E100", "manager")
	f.srv.Seed(repository.IssueCollection, "a", older)
	f.srv.Seed(repository.IssueCollection, "b", newer)
	f.srv.Seed(repository.IssueCollection, "c", byManager)
	f.srv.Seed(repository.IssueCollection, "d", issueDoc("Unstamped", "E100", ""))
	svc := f.issues()

	all := svc.EmployeeCreated(context.Background(), manager, ListParams{})
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Newer", all.Items[0].Title)
	assert.Equal(t, "Older", all.Items[1].Title)

	raiser := svc.EmployeeCreated(context.Background(), employee300(), ListParams{})
	assert.Len(t, raiser.Items, 2)

	assignee := svc.EmployeeCreated(context.Background(), employee, ListParams{})
	require.Len(t, assignee.Items, 1)
	assert.Equal(t, "Older", assignee.Items[0].Title)
}

func TestIssueEmployeeCreated_StartDateBeforeCreation(t *testing.T) {
	f := newFixture(t)
	startedLater := issueDoc("Started later", "E100", "E300")
	startedLater["start_date"] = "2024-06-01"
	startedLater["createdAt"] = 1000
	createdLater := issueDoc("Created later", "E100", "E300")
	createdLater["start_date"] = "2024-04-01"
	createdLater["createdAt"] = 5000
	unscheduled := issueDoc("Unscheduled", "E100", "E300")
	delete(unscheduled, "start_date")
	unscheduled["createdAt"] = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	f.srv.Seed(repository.IssueCollection, "a", createdLater)
	f.srv.Seed(repository.IssueCollection, "b", startedLater)
	f.srv.Seed(repository.IssueCollection, "c", unscheduled)

	view := f.issues().EmployeeCreated(context.Background(), manager, ListParams{})

	require.Len(t, view.Items, 3)
	assert.Equal(t, "Started later", view.Items[0].Title)
	assert.Equal(t, "Unscheduled", view.Items[1].Title)
	assert.Equal(t, "Created later", view.Items[2].Title)
}

func TestIssueList_PendingAndStats(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.IssueCollection, "a", issueDoc("One", "E100", "manager"))
	f.srv.Seed(repository.IssueCollection, "b", issueDoc("Two", "E200", "manager"))

	view := f.issues().List(context.Background(), employee, ListParams{})

	require.Len(t, view.Items, 1)
	assert.Equal(t, "One", view.Items[0].Title)
	assert.Equal(t, 1, view.Stats.Total)
}

func employee300() session.Session {
	s := employee
	s.ID, s.EmpID, s.Name = "s-e300", "E300", "Lata"
	return s
}

func issueDoc(title, assignedTo, assignedBy string) map[string]any {
	doc := sprintDoc(title, assignedTo, "2024-05-01", "Pending")
	if assignedBy != "" {
		doc["assigned_by"] = assignedBy
	}
	return doc
}
