package storage

import "strings"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"

	StatusActivated   = "Activated"
	StatusDeactivated = "Deactivated"
)

// Pages that can be granted to a user.
var SystemPages = []string{"Dashboard", "Customer", "Quotations", "Settings"}

type User struct {
	RowIndex     int      `json:"row_index"`
	SerialNo     string   `json:"serial_no"`
	EmployeeCode string   `json:"employee_code"`
	Name         string   `json:"user_name"`
	UserID       string   `json:"user_id"`
	Password     string   `json:"-"`
	Role         string   `json:"role"`
	PageAccess   []string `json:"page_access"`
	Status       string   `json:"status"`
}

// SessionUser is what the rest of the service knows about the caller.
type SessionUser struct {
	ID           string   `json:"id"`
	EmployeeCode string   `json:"employeeCode"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	PageAccess   []string `json:"pageAccess"`
	Status       string   `json:"status"`
}

func (u SessionUser) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// OwnerCode is the code stamped on rows the user creates.
func (u SessionUser) OwnerCode() string {
	if u.EmployeeCode != "" {
		return u.EmployeeCode
	}
	return u.ID
}

func (u SessionUser) CanAccess(page string) bool {
	for _, p := range u.PageAccess {
		if strings.EqualFold(strings.TrimSpace(p), page) {
			return true
		}
	}
	return false
}
