package service

import (
	"context"

	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

const recentSprintCount = 5

type Card struct {
	Title string `json:"title"`
	Value int    `json:"value"`
	Link  string `json:"link"`
}

type Dashboard struct {
	Cards         []Card         `json:"cards"`
	RecentTitle   string         `json:"recent_title"`
	RecentSprints []model.Sprint `json:"recent_sprints"`
}

type DashboardService struct {
	sprints   *repository.SprintRepository
	issues    *repository.IssueRepository
	employees *repository.EmployeeRepository
	logger    *zap.Logger
}

func NewDashboardService(sprints *repository.SprintRepository, issues *repository.IssueRepository, employees *repository.EmployeeRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{sprints: sprints, issues: issues, employees: employees, logger: logger}
}

// Build loads sprints, issues and employees one after another and
// summarizes them for sess. search filters the recent sprints by title.
func (s *DashboardService) Build(ctx context.Context, sess session.Session, search string) Dashboard {
	sprints := listOrEmpty(ctx, s.logger, repository.SprintCollection, s.sprints.List)
	issues := listOrEmpty(ctx, s.logger, repository.IssueCollection, s.issues.List)
	employees := listOrEmpty(ctx, s.logger, repository.EmployeeCollection, s.employees.List)

	viewer := viewerOf(sess)
	sprints = query.Apply(sprints, query.Options[model.Sprint]{
		Viewer: viewer,
		Owner:  func(sp model.Sprint) string { return sp.Owner() },
	})
	issues = query.Apply(issues, query.Options[model.Issue]{
		Viewer: viewer,
		Owner:  func(i model.Issue) string { return i.Owner() },
	})

	cards := []Card{
		{Title: "Total Sprints", Value: len(sprints), Link: "/sprints"},
		{Title: "Total Issues", Value: len(issues), Link: "/issues"},
	}
	if sess.IsManager() {
		cards = append(cards, Card{Title: "Employees", Value: len(employees), Link: "/employees"})
	}
	cards = append(cards, Card{
		Title: "Pending Issues",
		Value: query.Count(issues, func(i model.Issue) bool { return i.Status == model.StatusPending }),
		Link:  "/issues",
	})

	searched := query.Apply(sprints, query.Options[model.Sprint]{
		Text:   func(sp model.Sprint) string { return sp.Title },
		Search: search,
	})

	title := "Recent Sprints"
	if !sess.IsManager() {
		title = "My Recent Sprints"
	}
	return Dashboard{
		Cards:         cards,
		RecentTitle:   title,
		RecentSprints: query.Recent(searched, recentSprintCount),
	}
}
