package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/repository"
)

func seedDashboard(f *fixture) {
	for i := 1; i <= 7; i++ {
		f.srv.Seed(repository.SprintCollection, fmt.Sprintf("s%d", i), sprintDoc(fmt.Sprintf("Sprint %d", i), "E100", "2024-01-01", "In Progress"))
	}
	f.srv.Seed(repository.SprintCollection, "s8", sprintDoc("Other team", "E200", "2024-01-01", "In Progress"))
	f.srv.Seed(repository.IssueCollection, "i1", issueDoc("Mine pending", "E100", "manager"))
	other := issueDoc("Theirs pending", "E200", "manager")
	f.srv.Seed(repository.IssueCollection, "i2", other)
	done := issueDoc("Mine done", "E100", "manager")
	done["status"] = "Completed"
	f.srv.Seed(repository.IssueCollection, "i3", done)
	f.srv.Seed(repository.EmployeeCollection, "e1", map[string]string{"empid": "E100", "name": "Ravi"})
	f.srv.Seed(repository.EmployeeCollection, "e2", map[string]string{"empid": "E200", "name": "Kiran"})
}

func cardValues(d Dashboard) map[string]int {
	out := make(map[string]int, len(d.Cards))
	for _, c := range d.Cards {
		out[c.Title] = c.Value
	}
	return out
}

func TestDashboard_Employee(t *testing.T) {
	f := newFixture(t)
	seedDashboard(f)

	d := f.dashboard().Build(context.Background(), employee, "")

	assert.Equal(t, map[string]int{"Total Sprints": 7, "Total Issues": 2, "Pending Issues": 1}, cardValues(d))
	assert.Equal(t, "My Recent Sprints", d.RecentTitle)
	require.Len(t, d.RecentSprints, 5)
	assert.Equal(t, "Sprint 7", d.RecentSprints[0].Title)
	assert.Equal(t, "Sprint 3", d.RecentSprints[4].Title)
}

func TestDashboard_Manager(t *testing.T) {
	f := newFixture(t)
	seedDashboard(f)

	d := f.dashboard().Build(context.Background(), manager, "")

	assert.Equal(t, map[string]int{"Total Sprints": 8, "Total Issues": 3, "Employees": 2, "Pending Issues": 2}, cardValues(d))
	assert.Equal(t, "Employees", d.Cards[2].Title)
	assert.Equal(t, "Recent Sprints", d.RecentTitle)
	require.Len(t, d.RecentSprints, 5)
	assert.Equal(t, "Other team", d.RecentSprints[0].Title)
}

func TestDashboard_SearchFiltersRecent(t *testing.T) {
	f := newFixture(t)
	seedDashboard(f)

	d := f.dashboard().Build(context.Background(), manager, "OTHER")

	require.Len(t, d.RecentSprints, 1)
	assert.Equal(t, "Other team", d.RecentSprints[0].Title)
	assert.Equal(t, 8, cardValues(d)["Total Sprints"])
}

func TestAuditLatest_ManagerOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewAuditService(f.audit)
	_, err := f.sprints().Create(context.Background(), manager, newSprintForm("Login", "E100"))
	require.NoError(t, err)

	_, err = svc.Latest(context.Background(), employee, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	entries, err := svc.Latest(context.Background(), manager, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sprint", entries[0].Entity)
}
