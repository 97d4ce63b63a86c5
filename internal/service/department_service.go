package service

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

const entityDepartment = "department"

type DepartmentService struct {
	repo   *repository.DepartmentRepository
	rec    *recorder
	logger *zap.Logger
}

func NewDepartmentService(repo *repository.DepartmentRepository, audit AuditLog, events EventPublisher, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{
		repo:   repo,
		rec:    newRecorder(audit, events, logger),
		logger: logger,
	}
}

// DepartmentList carries the unique names A-Z plus the full records.
type DepartmentList struct {
	Names   []string           `json:"names"`
	Records []model.Department `json:"records"`
}

func (s *DepartmentService) List(ctx context.Context) DepartmentList {
	records := listOrEmpty(ctx, s.logger, repository.DepartmentCollection, s.repo.List)

	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for _, d := range records {
		name := strings.TrimSpace(d.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	slices.SortFunc(names, query.FoldCompare)
	return DepartmentList{Names: names, Records: records}
}

func (s *DepartmentService) Create(ctx context.Context, sess session.Session, form model.Department) (model.Department, error) {
	if err := requireManager(sess); err != nil {
		return model.Department{}, err
	}
	if err := validateDepartment(form); err != nil {
		s.rec.invalid(entityDepartment, contractsmq.ActionCreated)
		return model.Department{}, err
	}

	key, err := s.repo.Create(ctx, form)
	s.rec.record(ctx, sess, entityDepartment, contractsmq.ActionCreated, key, form.Name, err)
	if err != nil {
		return model.Department{}, err
	}
	form.Key = key
	return form, nil
}

func (s *DepartmentService) Update(ctx context.Context, sess session.Session, key string, form model.Department) (model.Department, error) {
	if err := requireManager(sess); err != nil {
		return model.Department{}, err
	}
	if err := validateDepartment(form); err != nil {
		s.rec.invalid(entityDepartment, contractsmq.ActionUpdated)
		return model.Department{}, err
	}

	err := s.repo.Update(ctx, key, form)
	s.rec.record(ctx, sess, entityDepartment, contractsmq.ActionUpdated, key, form.Name, err)
	if err != nil {
		return model.Department{}, err
	}
	form.Key = key
	return form, nil
}

type ApplicationService struct {
	repo   *repository.ApplicationRepository
	logger *zap.Logger
}

func NewApplicationService(repo *repository.ApplicationRepository, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, logger: logger}
}

// Names returns application names in store order.
func (s *ApplicationService) Names(ctx context.Context) []string {
	apps := listOrEmpty(ctx, s.logger, repository.ApplicationCollection, s.repo.List)
	names := make([]string, 0, len(apps))
	for _, a := range apps {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}
