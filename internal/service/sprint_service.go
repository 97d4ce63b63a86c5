package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

const entitySprint = "sprint"

type SprintService struct {
	repo   *repository.SprintRepository
	rec    *recorder
	logger *zap.Logger
	now    func() time.Time
}

func NewSprintService(repo *repository.SprintRepository, audit AuditLog, events EventPublisher, logger *zap.Logger) *SprintService {
	return &SprintService{
		repo:   repo,
		rec:    newRecorder(audit, events, logger),
		logger: logger,
		now:    time.Now,
	}
}

func sprintItem(s model.Sprint) model.WorkItem { return s.WorkItem }

// List is the sprint list as sess may see it.
func (s *SprintService) List(ctx context.Context, sess session.Session, p ListParams) ListView[model.Sprint] {
	all := listOrEmpty(ctx, s.logger, repository.SprintCollection, s.repo.List)
	filtered, items := roleView(all, workItemOptions(sess, p, sprintItem))

	view := newListView(items, p.Sort)
	stats := query.StatsOf(filtered, s.now())
	view.Stats = &stats
	return view
}

func (s *SprintService) Get(ctx context.Context, sess session.Session, key string) (model.Sprint, error) {
	sprint, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Sprint{}, notFound(err, entitySprint, key)
	}
	if !sess.IsManager() && sprint.Owner() != sess.EmpID {
		return model.Sprint{}, ErrForbidden
	}
	return sprint, nil
}

func (s *SprintService) Create(ctx context.Context, sess session.Session, form model.Sprint) (model.Sprint, error) {
	if err := validateSprint(form); err != nil {
		s.rec.invalid(entitySprint, contractsmq.ActionCreated)
		return model.Sprint{}, err
	}
	if form.CreatedAt == 0 {
		form.CreatedAt = model.At(s.now())
	}

	key, err := s.repo.Create(ctx, form)
	s.rec.record(ctx, sess, entitySprint, contractsmq.ActionCreated, key, form.Title, err)
	if err != nil {
		return model.Sprint{}, err
	}
	form.Key = key
	return form, nil
}

// Update overwrites the sprint; createdAt is carried over from the stored record.
func (s *SprintService) Update(ctx context.Context, sess session.Session, key string, form model.Sprint) (model.Sprint, error) {
	if err := validateSprint(form); err != nil {
		s.rec.invalid(entitySprint, contractsmq.ActionUpdated)
		return model.Sprint{}, err
	}

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Sprint{}, notFound(err, entitySprint, key)
	}
	if form.CreatedAt == 0 {
		form.CreatedAt = existing.CreatedAt
	}

	err = s.repo.Update(ctx, key, form)
	s.rec.record(ctx, sess, entitySprint, contractsmq.ActionUpdated, key, form.Title, err)
	if err != nil {
		return model.Sprint{}, err
	}
	form.Key = key
	return form, nil
}
