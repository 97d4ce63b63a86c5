package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/model"
)

func TestValidateSprint_ReportsJSONNamesInFormOrder(t *testing.T) {
	err := validateSprint(model.Sprint{WorkItem: model.WorkItem{
		Title:      "Checkout",
		Priority:   "   ",
		AssignedTo: "E100",
		Status:     "Pending",
	}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"priority", "description", "applicationname", "department", "start_date", "due_date"}, verr.Missing)
}

func TestValidateIssue_DescriptionOptional(t *testing.T) {
	issue := model.Issue{WorkItem: model.WorkItem{
		ApplicationName: "Portal",
		Title:           "Broken export",
		Department:      "IT",
		AssignedTo:      "E100",
		Priority:        "High",
		Status:          "Pending",
		StartDate:       "2024-05-01",
		DueDate:         "2024-05-10",
	}}
	assert.NoError(t, validateIssue(issue))
}

func TestValidateSignUp_BlankPassword(t *testing.T) {
	err := validateSignUp(model.Employee{EmpID: "E7", Name: "Asha", Department: "QA", Password: " \t"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password"}, verr.Missing)
	assert.EqualError(t, err, "missing required fields: password")
}

func TestValidateDepartment(t *testing.T) {
	assert.NoError(t, validateDepartment(model.Department{Name: "QA", Code: "QA1"}))

	var verr *ValidationError
	require.ErrorAs(t, validateDepartment(model.Department{}), &verr)
	assert.Equal(t, []string{"name", "code"}, verr.Missing)
}
