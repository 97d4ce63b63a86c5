package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
	"sprint-tracker/internal/util"
	"sprint-tracker/pkg/config"
	"sprint-tracker/pkg/logger"
)

type AuthService struct {
	employees *EmployeeService
	repo      *repository.EmployeeRepository
	sessions  session.Store
	jwt       config.JWTConfig
	logger    *zap.Logger
}

func NewAuthService(employees *EmployeeService, repo *repository.EmployeeRepository, sessions session.Store, jwt config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		employees: employees,
		repo:      repo,
		sessions:  sessions,
		jwt:       jwt,
		logger:    logger,
	}
}

// SignIn matches empid case-insensitively against the employee list and
// opens a session. Unlike list views, a failed read is an error here.
func (s *AuthService) SignIn(ctx context.Context, empID, password string) (string, session.Session, error) {
	log := logger.WithTrace(ctx, s.logger)

	employees, err := s.repo.List(ctx)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("load employees: %w", err)
	}

	empID = strings.TrimSpace(empID)
	var found *model.Employee
	for i := range employees {
		if empID != "" && strings.EqualFold(employees[i].EmpID, empID) {
			found = &employees[i]
			break
		}
	}
	if found == nil {
		log.Info("signin rejected", zap.String("empid", empID), zap.String("reason", "unknown empid"))
		return "", session.Session{}, ErrUnknownEmployee
	}
	if !util.CheckPassword(password, found.Password) {
		log.Info("signin rejected", zap.String("empid", empID), zap.String("reason", "wrong password"))
		return "", session.Session{}, ErrWrongPassword
	}

	sess := session.FromEmployee(ulid.Make().String(), *found)
	if err := s.sessions.Save(ctx, sess, s.jwt.TTL); err != nil {
		return "", session.Session{}, err
	}

	token, err := util.GenerateJWT(util.Claims{EmpID: sess.EmpID, Role: sess.Role, SessionID: sess.ID}, s.jwt.Secret, s.jwt.TTL)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("sign token: %w", err)
	}

	log.Info("signin: success", zap.String("empid", sess.EmpID), zap.String("role", sess.Role))
	return token, sess, nil
}

// SignUp registers an employee account.
func (s *AuthService) SignUp(ctx context.Context, form model.Employee) (model.Employee, error) {
	if err := validateSignUp(form); err != nil {
		s.employees.rec.invalid(entityEmployee, "signup")
		return model.Employee{}, err
	}
	return s.employees.create(ctx, session.Session{EmpID: strings.TrimSpace(form.EmpID), Role: form.Role}, form)
}

// Authenticate resolves a bearer token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (session.Session, error) {
	if token == "" {
		return session.Session{}, ErrUnauthenticated
	}
	claims, err := util.ParseJWT(token, s.jwt.Secret)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return session.Session{}, ErrUnauthenticated
	}
	if err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, sess session.Session) error {
	return s.sessions.Delete(ctx, sess.ID)
}
