package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("Employee not found")
	ErrEmployeeInactive = errors.New("Employee is not active")
)
