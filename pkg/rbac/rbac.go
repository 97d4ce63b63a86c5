package rbac

const (
	PermissionReadRecords      = "records:read"
	PermissionWriteRequirement = "requirement:write"
	PermissionCreateIssue      = "issue:create"

	// manager only
	PermissionWriteSprint     = "sprint:write"
	PermissionWriteIssue      = "issue:write"
	PermissionManageEmployee  = "employee:manage"
	PermissionWriteDepartment = "department:write"
	PermissionReadAudit       = "audit:read"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

var rolePermissions = map[string][]string{
	RoleEmployee: {
		PermissionReadRecords,
		PermissionWriteRequirement,
		PermissionCreateIssue,
	},
	RoleManager: {
		PermissionReadRecords,
		PermissionWriteRequirement,
		PermissionCreateIssue,
		PermissionWriteSprint,
		PermissionWriteIssue,
		PermissionManageEmployee,
		PermissionWriteDepartment,
		PermissionReadAudit,
	},
}

// NormalizeRole maps stored role values onto a known role; anything other
// than manager is treated as an employee.
func NormalizeRole(role string) string {
	if role == RoleManager {
		return RoleManager
	}
	return RoleEmployee
}

func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[NormalizeRole(role)]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission is HasPermission returning an error.
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
