package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
)

func TestSprintList_EmployeeSeesOwnNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.SprintCollection, "a", sprintDoc("Login", "E100", "2024-01-05", "In Progress"))
	f.srv.Seed(repository.SprintCollection, "b", sprintDoc("Billing", "E200", "2024-02-01", "In Progress"))
	f.srv.Seed(repository.SprintCollection, "c", sprintDoc("Reports", "E100", "2024-03-10", "Completed"))

	view := f.sprints().List(context.Background(), employee, ListParams{})

	require.Len(t, view.Items, 2)
	assert.Equal(t, "Reports", view.Items[0].Title)
	assert.Equal(t, "Login", view.Items[1].Title)
	for _, sp := range view.Items {
		assert.Equal(t, "E100", sp.AssignedTo)
	}
	require.NotNil(t, view.Stats)
	assert.Equal(t, query.Stats{Total: 2, InProgress: 1, Completed: 1}, *view.Stats)
}

func TestSprintList_ManagerSeesAll(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.SprintCollection, "a", sprintDoc("Login", "E100", "2024-01-05", "In Progress"))
	f.srv.Seed(repository.SprintCollection, "b", sprintDoc("Billing", "E200", "2024-02-01", "In Progress"))

	view := f.sprints().List(context.Background(), manager, ListParams{})

	assert.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Stats.Total)
}

func TestSprintList_SearchAndSort(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.SprintCollection, "a", sprintDoc("login page", "E100", "2024-01-05", "In Progress"))
	f.srv.Seed(repository.SprintCollection, "b", sprintDoc("Admin Login", "E200", "2024-02-01", "In Progress"))
	f.srv.Seed(repository.SprintCollection, "c", sprintDoc("Reports", "E100", "2024-03-10", "Completed"))
	svc := f.sprints()

	view := svc.List(context.Background(), manager, ListParams{
		Search: "LOGIN",
		Sort:   query.SortState{Column: "title", Dir: query.SortAsc},
	})
	require.Len(t, view.Items, 2)
	assert.Equal(t, "Admin Login", view.Items[0].Title)
	assert.Equal(t, "login page", view.Items[1].Title)
	assert.Equal(t, "asc", view.Order)
	// stats ignore the search
	assert.Equal(t, 3, view.Stats.Total)
}

func TestSprintList_ReadFailureShowsEmpty(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.SprintCollection, "a", sprintDoc("Login", "E100", "2024-01-05", "In Progress"))
	f.srv.FailWith(repository.SprintCollection, http.StatusInternalServerError)

	view := f.sprints().List(context.Background(), manager, ListParams{})

	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Stats.Total)
}

func TestSprintCreate_MissingFieldsNeverReachStore(t *testing.T) {
	f := newFixture(t)

	_, err := f.sprints().Create(context.Background(), manager, model.Sprint{WorkItem: model.WorkItem{Title: "Login"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "assigned_to")
	assert.NotContains(t, verr.Missing, "title")
	assert.Zero(t, f.srv.Count(http.MethodPost, repository.SprintCollection))
	assert.Empty(t, f.events.keys())
}

func TestSprintCreate_ThenReloadShowsOneEqualEntry(t *testing.T) {
	f := newFixture(t)
	svc := f.sprints()
	form := newSprintForm("Login", "E100")

	created, err := svc.Create(context.Background(), manager, form)
	require.NoError(t, err)
	require.NotEmpty(t, created.Key)

	view := svc.List(context.Background(), manager, ListParams{})
	require.Len(t, view.Items, 1)
	got := view.Items[0]
	assert.Equal(t, created.Key, got.Key)
	got.Key = ""
	got.CreatedAt = 0
	assert.Equal(t, form, got)

	assert.Equal(t, []string{"sprint.created"}, f.events.keys())
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "success", f.audit.entries[0].Outcome)
	assert.Equal(t, "M1", f.audit.entries[0].Actor)
}

func TestSprintUpdate_KeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	doc := sprintDoc("Login", "E100", "2024-01-05", "In Progress")
	doc["createdAt"] = 1700000000000
	f.srv.Seed(repository.SprintCollection, "a", doc)
	svc := f.sprints()

	current, err := svc.Get(context.Background(), manager, "a")
	require.NoError(t, err)
	current.Status = "Completed"
	current.CreatedAt = 0

	updated, err := svc.Update(context.Background(), manager, "a", current)
	require.NoError(t, err)
	assert.Equal(t, model.Timestamp(1700000000000), updated.CreatedAt)

	reloaded, err := svc.Get(context.Background(), manager, "a")
	require.NoError(t, err)
	assert.Equal(t, "Completed", reloaded.Status)
	assert.Equal(t, model.Timestamp(1700000000000), reloaded.CreatedAt)
}

func TestSprintGet_OtherEmployeeForbidden(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.SprintCollection, "b", sprintDoc("Billing", "E200", "2024-02-01", "In Progress"))
	svc := f.sprints()

	_, err := svc.Get(context.Background(), employee, "b")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), manager, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSprintWriteFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.srv.FailWith(repository.SprintCollection, http.StatusServiceUnavailable)

	_, err := f.sprints().Create(context.Background(), manager, newSprintForm("Login", "E100"))

	require.Error(t, err)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "failed", f.audit.entries[0].Outcome)
	assert.Empty(t, f.events.keys())
}

func newSprintForm(title, assignedTo string) model.Sprint {
	return model.Sprint{WorkItem: model.WorkItem{
		Title:           title,
		ApplicationName: "Portal",
		Department:      "Engineering",
		AssignedTo:      assignedTo,
		Priority:        "High",
		Status:          "Not Started",
		StartDate:       "2024-04-01",
		DueDate:         "2024-04-15",
		Description:     "build the login page",
	}}
}
