package employee

import "errors"

var (
	ErrInvalidID             = errors.New("employee: invalid id")
	ErrInvalidFullName       = errors.New("employee: invalid full name")
	ErrInvalidSalary         = errors.New("employee: invalid salary")
	ErrInvalidRole           = errors.New("employee: invalid role")
	ErrUnknownRole           = errors.New("employee: role is not registered")
	ErrInvalidDepartment     = errors.New("employee: invalid department")
	ErrInvalidPageSize       = errors.New("employee: invalid page size")
	ErrInvalidPageToken      = errors.New("employee: invalid page token")
	ErrInvalidDateRange      = errors.New("employee: birth date must precede hire date")
	ErrEmployeeNotFound      = errors.New("employee: not found")
	ErrEmployeeAlreadyExists = errors.New("employee: already exists")
)
