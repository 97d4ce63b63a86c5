package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/model"
	"sprint-tracker/internal/query"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
	"sprint-tracker/internal/util"
)

const entityEmployee = "employee"

type EmployeeService struct {
	repo   *repository.EmployeeRepository
	rec    *recorder
	logger *zap.Logger
}

func NewEmployeeService(repo *repository.EmployeeRepository, audit AuditLog, events EventPublisher, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		rec:    newRecorder(audit, events, logger),
		logger: logger,
	}
}

var employeeColumns = map[string]func(a, b model.Employee) int{
	"name":       func(a, b model.Employee) int { return query.FoldCompare(a.Name, b.Name) },
	"department": func(a, b model.Employee) int { return query.FoldCompare(a.Department, b.Department) },
}

func requireManager(sess session.Session) error {
	if !sess.IsManager() {
		return ErrForbidden
	}
	return nil
}

// List is the manager's employee table, latest added first by default.
func (s *EmployeeService) List(ctx context.Context, sess session.Session, p ListParams) (ListView[model.Employee], error) {
	if err := requireManager(sess); err != nil {
		return ListView[model.Employee]{}, err
	}

	all := listOrEmpty(ctx, s.logger, repository.EmployeeCollection, s.repo.List)
	items := query.Apply(all, query.Options[model.Employee]{
		Viewer:  viewerOf(sess),
		Text:    model.Employee.SearchText,
		Search:  p.Search,
		Sort:    p.Sort,
		Columns: employeeColumns,
		Default: query.Reversed[model.Employee],
	})
	for i := range items {
		items[i] = items[i].Public()
	}
	return newListView(items, p.Sort), nil
}

// ByDepartment lists employees of department (case-insensitive), for assignee pickers.
func (s *EmployeeService) ByDepartment(ctx context.Context, department string) []model.Employee {
	department = strings.TrimSpace(department)
	all := listOrEmpty(ctx, s.logger, repository.EmployeeCollection, s.repo.List)
	out := make([]model.Employee, 0)
	if department == "" {
		return out
	}
	for _, e := range all {
		if strings.EqualFold(e.Department, department) {
			out = append(out, e.Public())
		}
	}
	return out
}

func (s *EmployeeService) Get(ctx context.Context, sess session.Session, key string) (model.Employee, error) {
	if err := requireManager(sess); err != nil {
		return model.Employee{}, err
	}
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Employee{}, notFound(err, entityEmployee, key)
	}
	return e.Public(), nil
}

// prepareNewEmployee applies the role and password defaults and hashes the password.
func prepareNewEmployee(e model.Employee) (model.Employee, error) {
	e.EmpID = strings.TrimSpace(e.EmpID)
	if e.Role == "" {
		e.Role = model.RoleEmployee
	}
	if e.Password == "" {
		e.Password = util.DefaultPassword
	}
	if !util.IsHashed(e.Password) {
		hash, err := util.HashPassword(e.Password)
		if err != nil {
			return e, err
		}
		e.Password = hash
	}
	return e, nil
}

func (s *EmployeeService) Create(ctx context.Context, sess session.Session, form model.Employee) (model.Employee, error) {
	if err := requireManager(sess); err != nil {
		return model.Employee{}, err
	}
	return s.create(ctx, sess, form)
}

func (s *EmployeeService) create(ctx context.Context, sess session.Session, form model.Employee) (model.Employee, error) {
	if err := validateEmployee(form); err != nil {
		s.rec.invalid(entityEmployee, contractsmq.ActionCreated)
		return model.Employee{}, err
	}
	emp, err := prepareNewEmployee(form)
	if err != nil {
		return model.Employee{}, err
	}

	key, err := s.repo.Create(ctx, emp)
	s.rec.record(ctx, sess, entityEmployee, contractsmq.ActionCreated, key, emp.Name, err)
	if err != nil {
		return model.Employee{}, err
	}
	emp.Key = key
	return emp.Public(), nil
}

// Update overwrites the employee; an empty password keeps the stored one.
func (s *EmployeeService) Update(ctx context.Context, sess session.Session, key string, form model.Employee) (model.Employee, error) {
	if err := requireManager(sess); err != nil {
		return model.Employee{}, err
	}
	if err := validateEmployee(form); err != nil {
		s.rec.invalid(entityEmployee, contractsmq.ActionUpdated)
		return model.Employee{}, err
	}

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.Employee{}, notFound(err, entityEmployee, key)
	}
	if form.Role == "" {
		form.Role = existing.Role
	}
	switch {
	case form.Password == "":
		form.Password = existing.Password
	case !util.IsHashed(form.Password):
		hash, err := util.HashPassword(form.Password)
		if err != nil {
			return model.Employee{}, err
		}
		form.Password = hash
	}

	err = s.repo.Update(ctx, key, form)
	s.rec.record(ctx, sess, entityEmployee, contractsmq.ActionUpdated, key, form.Name, err)
	if err != nil {
		return model.Employee{}, err
	}
	form.Key = key
	return form.Public(), nil
}

func (s *EmployeeService) Delete(ctx context.Context, sess session.Session, key string) error {
	if err := requireManager(sess); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, key)
	s.rec.record(ctx, sess, entityEmployee, contractsmq.ActionDeleted, key, "", err)
	return err
}
