package domain

import "time"

// Employee is a payroll record. UserID links the record to the single
// credential allowed non-admin access to it; nil means nobody owns it.
type Employee struct {
	ID             int64
	Name           string
	Email          string
	Role           string
	DepartmentID   int64
	DepartmentName string
	UserID         *int64
	Username       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy reports whether the employee is linked to the user with userID.
func (e *Employee) OwnedBy(userID int64) bool {
	return e.UserID != nil && *e.UserID == userID
}

// Department groups employees. Name is unique.
type Department struct {
	ID            int64
	Name          string
	EmployeeCount int
}
