package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

const entityRequirement = "requirement"

// RequirementStore is satisfied by the fallback-backed requirement repository.
type RequirementStore interface {
	List(ctx context.Context) ([]model.Requirement, error)
	Get(ctx context.Context, key string) (model.Requirement, error)
	Create(ctx context.Context, item model.Requirement) (string, error)
	Update(ctx context.Context, key string, item model.Requirement) error
	Delete(ctx context.Context, key string) error
}

type RequirementService struct {
	repo   RequirementStore
	rec    *recorder
	logger *zap.Logger
	now    func() time.Time
}

func NewRequirementService(repo RequirementStore, audit AuditLog, events EventPublisher, logger *zap.Logger) *RequirementService {
	return &RequirementService{
		repo:   repo,
		rec:    newRecorder(audit, events, logger),
		logger: logger,
		now:    time.Now,
	}
}

// RequirementDetail is a requirement with its log entries oldest first.
type RequirementDetail struct {
	model.Requirement
	Activity []model.KeyedEntry `json:"activity"`
	Thread   []model.KeyedEntry `json:"thread"`
}

var requirementColumns = map[string]func(a, b model.Requirement) int{
	"title":    func(a, b model.Requirement) int { return query.FoldCompare(a.Title, b.Title) },
	"priority": func(a, b model.Requirement) int { return query.FoldCompare(a.Priority, b.Priority) },
	"status":   func(a, b model.Requirement) int { return query.FoldCompare(a.Status, b.Status) },
	"dueDate": func(a, b model.Requirement) int {
		ta, _ := model.ParseDate(a.DueDate)
		tb, _ := model.ParseDate(b.DueDate)
		return ta.Compare(tb)
	},
}

// List shows every requirement, newest created first.
func (s *RequirementService) List(ctx context.Context, sess session.Session, p ListParams) ListView[model.Requirement] {
	all := listOrEmpty(ctx, s.logger, repository.RequirementCollection, s.repo.List)
	items := query.Apply(all, query.Options[model.Requirement]{
		Viewer:  viewerOf(sess),
		Text:    model.Requirement.GetTitle,
		Search:  p.Search,
		Sort:    p.Sort,
		Columns: requirementColumns,
		Default: query.NewestFirst(func(q model.Requirement) (time.Time, bool) {
			return q.CreatedAt.Time(), q.CreatedAt != 0
		}),
	})

	view := newListView(items, p.Sort)
	stats := query.StatsOf(all, s.now())
	view.Stats = &stats
	return view
}

func (s *RequirementService) Get(ctx context.Context, key string) (RequirementDetail, error) {
	q, err := s.repo.Get(ctx, key)
	if err != nil {
		return RequirementDetail{}, notFound(err, entityRequirement, key)
	}
	return RequirementDetail{Requirement: q, Activity: q.Activity(), Thread: q.CommentList()}, nil
}

func cleanAttachments(in []model.Attachment) []model.Attachment {
	var out []model.Attachment
	for _, a := range in {
		a.Name = strings.TrimSpace(a.Name)
		a.URL = strings.TrimSpace(a.URL)
		if a.Name == "" && a.URL == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *RequirementService) entry(sess session.Session, text string) (string, model.LogEntry) {
	by := sess.Name
	if by == "" {
		by = sess.EmpID
	}
	return ulid.Make().String(), model.LogEntry{
		Text:        text,
		CommentedBy: by,
		Timestamp:   model.At(s.now()),
	}
}

func (s *RequirementService) Create(ctx context.Context, sess session.Session, form model.Requirement) (model.Requirement, error) {
	if err := validateRequirement(form); err != nil {
		s.rec.invalid(entityRequirement, contractsmq.ActionCreated)
		return model.Requirement{}, err
	}
	if form.Priority == "" {
		form.Priority = model.DefaultRequirementPriority
	}
	if form.Status == "" {
		form.Status = model.StatusNotStarted
	}
	form.Attachments = cleanAttachments(form.Attachments)
	now := model.At(s.now())
	form.CreatedAt = now
	form.UpdatedAt = now

	id, e := s.entry(sess, "Requirement created")
	form.ActivityLog = map[string]model.LogEntry{id: e}
	form.Comments = nil

	key, err := s.repo.Create(ctx, form)
	s.rec.record(ctx, sess, entityRequirement, contractsmq.ActionCreated, key, form.Title, err)
	if err != nil {
		return model.Requirement{}, err
	}
	form.Key = key
	return form, nil
}

// Update overwrites the editable fields and appends an activity entry.
func (s *RequirementService) Update(ctx context.Context, sess session.Session, key string, form model.Requirement) (model.Requirement, error) {
	if err := validateRequirement(form); err != nil {
		s.rec.invalid(entityRequirement, contractsmq.ActionUpdated)
		return model.Requirement{}, err
	}

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Requirement{}, notFound(err, entityRequirement, key)
	}

	if form.Priority == "" {
		form.Priority = existing.Priority
	}
	if form.Status == "" {
		form.Status = existing.Status
	}
	form.Attachments = cleanAttachments(form.Attachments)
	form.CreatedAt = existing.CreatedAt
	form.UpdatedAt = model.At(s.now())
	form.Comments = existing.Comments

	form.ActivityLog = make(map[string]model.LogEntry, len(existing.ActivityLog)+1)
	for id, e := range existing.ActivityLog {
		form.ActivityLog[id] = e
	}
	id, e := s.entry(sess, describeChange(existing, form))
	form.ActivityLog[id] = e

	err = s.repo.Update(ctx, key, form)
	s.rec.record(ctx, sess, entityRequirement, contractsmq.ActionUpdated, key, form.Title, err)
	if err != nil {
		return model.Requirement{}, err
	}
	form.Key = key
	return form, nil
}

func describeChange(before, after model.Requirement) string {
	if before.Status != after.Status {
		return fmt.Sprintf("Status changed from %q to %q", before.Status, after.Status)
	}
	return "Requirement updated"
}

// AddComment appends a comment and bumps updatedAt.
func (s *RequirementService) AddComment(ctx context.Context, sess session.Session, key, text string) (model.KeyedEntry, error) {
	text = strings.TrimSpace(text)
	if err := checkForm(commentForm{Text: text}); err != nil {
		s.rec.invalid(entityRequirement, "commented")
		return model.KeyedEntry{}, err
	}

	q, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.KeyedEntry{}, notFound(err, entityRequirement, key)
	}
	id, e := s.entry(sess, text)
	if q.Comments == nil {
		q.Comments = make(map[string]model.LogEntry, 1)
	}
	q.Comments[id] = e
	q.UpdatedAt = e.Timestamp

	err = s.repo.Update(ctx, key, q)
	s.rec.record(ctx, sess, entityRequirement, contractsmq.ActionUpdated, key, q.Title, err)
	if err != nil {
		return model.KeyedEntry{}, err
	}
	return model.KeyedEntry{ID: id, LogEntry: e}, nil
}

// Delete reports success even when only the local copy could be removed.
func (s *RequirementService) Delete(ctx context.Context, sess session.Session, key string) error {
	err := s.repo.Delete(ctx, key)
	s.rec.record(ctx, sess, entityRequirement, contractsmq.ActionDeleted, key, "", err)
	return err
}
