package model

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Employee struct {
	Key        string `json:"key,omitempty"`
	EmpID      string `json:"empid"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password,omitempty"`
}

func (e *Employee) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	*e = Employee{
		Key:        field(r, "key"),
		EmpID:      field(r, "empid", "emp_id", "employee_id", "empId"),
		Name:       field(r, "name"),
		Department: field(r, "department", "dept", "departmentname", "department_name"),
		Role:       field(r, "role"),
		Email:      field(r, "email"),
		Phone:      field(r, "phone"),
		Password:   field(r, "password"),
	}
	return nil
}

// IsManager reports whether the record carries the manager role.
func (e Employee) IsManager() bool {
	return e.Role == RoleManager
}

// Public returns a copy safe to hand to clients.
func (e Employee) Public() Employee {
	e.Password = ""
	return e
}

func (e *Employee) SetKey(key string) { e.Key = key }

// SearchText is what the employee list search matches against.
func (e Employee) SearchText() string {
	return e.Name + " " + e.EmpID + " " + e.Role + " " + e.Department
}
