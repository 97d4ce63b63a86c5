package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

const entityIssue = "issue"

type IssueService struct {
	repo      *repository.IssueRepository
	employees *repository.EmployeeRepository
	rec       *recorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewIssueService(repo *repository.IssueRepository, employees *repository.EmployeeRepository, audit AuditLog, events EventPublisher, logger *zap.Logger) *IssueService {
	return &IssueService{
		repo:      repo,
		employees: employees,
		rec:       newRecorder(audit, events, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func issueItem(i model.Issue) model.WorkItem { return i.WorkItem }

func (s *IssueService) List(ctx context.Context, sess session.Session, p ListParams) ListView[model.Issue] {
	all := listOrEmpty(ctx, s.logger, repository.IssueCollection, s.repo.List)
	filtered, items := roleView(all, workItemOptions(sess, p, issueItem))

	view := newListView(items, p.Sort)
	stats := query.StatsOf(filtered, s.now())
	view.Stats = &stats
	return view
}

// EmployeeCreated lists issues raised by employees rather than managers, newest first.
func (s *IssueService) EmployeeCreated(ctx context.Context, sess session.Session, p ListParams) ListView[model.Issue] {
	all := listOrEmpty(ctx, s.logger, repository.IssueCollection, s.repo.List)
	raised := make([]model.Issue, 0, len(all))
	for _, issue := range all {
		if issue.EmployeeCreated() {
			raised = append(raised, issue)
		}
	}

	opt := workItemOptions(sess, p, issueItem)
	// the raiser sees their own issues too
	opt.Owner = func(i model.Issue) string {
		if i.AssignedBy == sess.EmpID {
			return sess.EmpID
		}
		return i.Owner()
	}
	return newListView(query.Apply(raised, opt), p.Sort)
}

func (s *IssueService) Get(ctx context.Context, sess session.Session, key string) (model.Issue, error) {
	issue, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Issue{}, notFound(err, entityIssue, key)
	}
	if !sess.IsManager() && issue.Owner() != sess.EmpID && issue.AssignedBy != sess.EmpID {
		return model.Issue{}, ErrForbidden
	}
	return issue, nil
}

// Create stamps the raiser and the assignee name before storing the issue.
func (s *IssueService) Create(ctx context.Context, sess session.Session, form model.Issue) (model.Issue, error) {
	if err := validateIssue(form); err != nil {
		s.rec.invalid(entityIssue, contractsmq.ActionCreated)
		return model.Issue{}, err
	}

	if sess.IsManager() {
		form.AssignedBy = model.RoleManager
	} else {
		form.AssignedBy = sess.EmpID
	}
	form.AssignerName = sess.Name
	form.AssigneeName = s.assigneeName(ctx, form.AssignedTo)
	form.CreatedAt = model.At(s.now())

	key, err := s.repo.Create(ctx, form)
	s.rec.record(ctx, sess, entityIssue, contractsmq.ActionCreated, key, form.Title, err)
	if err != nil {
		return model.Issue{}, err
	}
	form.Key = key
	return form, nil
}

// Update overwrites the issue, keeping who raised it and when.
func (s *IssueService) Update(ctx context.Context, sess session.Session, key string, form model.Issue) (model.Issue, error) {
	if err := validateIssue(form); err != nil {
		s.rec.invalid(entityIssue, contractsmq.ActionUpdated)
		return model.Issue{}, err
	}

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Issue{}, notFound(err, entityIssue, key)
	}
	form.AssignedBy = existing.AssignedBy
	form.AssignerName = existing.AssignerName
	form.CreatedAt = existing.CreatedAt
	if form.AssignedTo != existing.AssignedTo || form.AssigneeName == "" {
		form.AssigneeName = s.assigneeName(ctx, form.AssignedTo)
	}

	err = s.repo.Update(ctx, key, form)
	s.rec.record(ctx, sess, entityIssue, contractsmq.ActionUpdated, key, form.Title, err)
	if err != nil {
		return model.Issue{}, err
	}
	form.Key = key
	return form, nil
}

// assigneeName looks the empid up in the employee list; empty when unknown.
func (s *IssueService) assigneeName(ctx context.Context, empID string) string {
	employees := listOrEmpty(ctx, s.logger, repository.EmployeeCollection, s.employees.List)
	for _, e := range employees {
		if strings.EqualFold(e.EmpID, empID) {
			return e.Name
		}
	}
	return ""
}
