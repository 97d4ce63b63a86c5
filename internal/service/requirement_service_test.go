package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/repository"
)

func TestRequirementCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	svc := f.requirements(t)

	created, err := svc.Create(context.Background(), employee, model.Requirement{
		Title:       "Export to CSV",
		Attachments: []model.Attachment{{Name: " mockup.pdf ", URL: "https://files/mockup.pdf"}, {}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Medium", created.Priority)
	assert.Equal(t, "Not Started", created.Status)
	assert.NotZero(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, []model.Attachment{{Name: "mockup.pdf", URL: "https://files/mockup.pdf"}}, created.Attachments)

	detail, err := svc.Get(context.Background(), created.Key)
	require.NoError(t, err)
	require.Len(t, detail.Activity, 1)
	assert.Equal(t, "Requirement created", detail.Activity[0].Text)
	assert.Equal(t, "Ravi", detail.Activity[0].CommentedBy)
	assert.Empty(t, detail.Thread)
}

func TestRequirementCreate_TitleRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.requirements(t).Create(context.Background(), employee, model.Requirement{Purpose: "no title"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title"}, verr.Missing)
	assert.Zero(t, f.srv.Count(http.MethodPost, repository.RequirementCollection))
}

func TestRequirementUpdate_AppendsActivity(t *testing.T) {
	f := newFixture(t)
	svc := f.requirements(t)
	created, err := svc.Create(context.Background(), manager, model.Requirement{Title: "Export"})
	require.NoError(t, err)
	_, err = svc.AddComment(context.Background(), employee, created.Key, "looks good")
	require.NoError(t, err)

	form := created
	form.Status = "In Progress"
	_, err = svc.Update(context.Background(), manager, created.Key, form)
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.Key)
	require.NoError(t, err)
	require.Len(t, detail.Activity, 2)
	assert.Equal(t, "Requirement created", detail.Activity[0].Text)
	assert.Equal(t, `Status changed from "Not Started" to "In Progress"`, detail.Activity[1].Text)
	require.Len(t, detail.Thread, 1)
	assert.Equal(t, "looks good", detail.Thread[0].Text)
	assert.Equal(t, created.CreatedAt, detail.CreatedAt)
}

func TestRequirementAddComment_EmptyText(t *testing.T) {
	f := newFixture(t)

	_, err := f.requirements(t).AddComment(context.Background(), employee, "k", "   ")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.srv.Requests())
}

func TestRequirementFallback_WhenRemoteFails(t *testing.T) {
	f := newFixture(t)
	svc := f.requirements(t)
	f.srv.FailWith(repository.RequirementCollection, http.StatusServiceUnavailable)

	created, err := svc.Create(context.Background(), employee, model.Requirement{Title: "Offline draft"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Key, repository.LocalKeyPrefix))

	view := svc.List(context.Background(), employee, ListParams{})
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Offline draft", view.Items[0].Title)
	assert.Equal(t, created.Key, view.Items[0].Key)

	require.NoError(t, svc.Delete(context.Background(), employee, created.Key))
	assert.Empty(t, svc.List(context.Background(), employee, ListParams{}).Items)
}

func TestRequirementList_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(repository.RequirementCollection, "a", map[string]any{"title": "Old", "status": "Completed", "createdAt": 1000})
	f.srv.Seed(repository.RequirementCollection, "b", map[string]any{"title": "New", "status": "In Progress", "createdAt": 3000})
	f.srv.Seed(repository.RequirementCollection, "c", map[string]any{"title": "Undated", "status": "Pending"})

	view := f.requirements(t).List(context.Background(), employee, ListParams{})

	require.Len(t, view.Items, 3)
	assert.Equal(t, "New", view.Items[0].Title)
	assert.Equal(t, "Old", view.Items[1].Title)
	assert.Equal(t, "Undated", view.Items[2].Title)
	assert.Equal(t, 3, view.Stats.Total)
	assert.Equal(t, 1, view.Stats.Completed)
	assert.Equal(t, 1, view.Stats.InProgress)
}
