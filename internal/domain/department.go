package domain

// Department represents an organizational unit that owns employees.
type Department struct {
	ID          int64
	Name        string
	Description string
}
