package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sprint-tracker/internal/model"
)

var formValidator = newFormValidator()

// newFormValidator reports fields by their JSON name.
func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkForm returns a *ValidationError naming every empty required field,
// in field order.
func checkForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &ValidationError{Missing: missing}
}

func trim(s string) string { return strings.TrimSpace(s) }

type sprintForm struct {
	Title           string `json:"title" validate:"required"`
	Priority        string `json:"priority" validate:"required"`
	Description     string `json:"description" validate:"required"`
	ApplicationName string `json:"applicationname" validate:"required"`
	Department      string `json:"department" validate:"required"`
	AssignedTo      string `json:"assigned_to" validate:"required"`
	StartDate       string `json:"start_date" validate:"required"`
	DueDate         string `json:"due_date" validate:"required"`
	Status          string `json:"status" validate:"required"`
}

func validateSprint(sp model.Sprint) error {
	return checkForm(sprintForm{
		Title:           trim(sp.Title),
		Priority:        trim(sp.Priority),
		Description:     trim(sp.Description),
		ApplicationName: trim(sp.ApplicationName),
		Department:      trim(sp.Department),
		AssignedTo:      trim(sp.AssignedTo),
		StartDate:       trim(sp.StartDate),
		DueDate:         trim(sp.DueDate),
		Status:          trim(sp.Status),
	})
}

type issueForm struct {
	ApplicationName string `json:"applicationname" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Department      string `json:"department" validate:"required"`
	AssignedTo      string `json:"assigned_to" validate:"required"`
	Priority        string `json:"priority" validate:"required"`
	Status          string `json:"status" validate:"required"`
	StartDate       string `json:"start_date" validate:"required"`
	DueDate         string `json:"due_date" validate:"required"`
}

func validateIssue(i model.Issue) error {
	return checkForm(issueForm{
		ApplicationName: trim(i.ApplicationName),
		Title:           trim(i.Title),
		Department:      trim(i.Department),
		AssignedTo:      trim(i.AssignedTo),
		Priority:        trim(i.Priority),
		Status:          trim(i.Status),
		StartDate:       trim(i.StartDate),
		DueDate:         trim(i.DueDate),
	})
}

type employeeForm struct {
	EmpID      string `json:"empid" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
}

func validateEmployee(e model.Employee) error {
	return checkForm(employeeForm{EmpID: trim(e.EmpID), Name: trim(e.Name), Department: trim(e.Department)})
}

// signUpForm also needs a password; employees created by a manager get the default one.
type signUpForm struct {
	EmpID      string `json:"empid" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func validateSignUp(e model.Employee) error {
	return checkForm(signUpForm{
		EmpID:      trim(e.EmpID),
		Name:       trim(e.Name),
		Department: trim(e.Department),
		Password:   trim(e.Password),
	})
}

type departmentForm struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func validateDepartment(d model.Department) error {
	return checkForm(departmentForm{Name: trim(d.Name), Code: trim(d.Code)})
}

type requirementForm struct {
	Title string `json:"title" validate:"required"`
}

func validateRequirement(q model.Requirement) error {
	return checkForm(requirementForm{Title: trim(q.Title)})
}

type commentForm struct {
	Text string `json:"text" validate:"required"`
}
