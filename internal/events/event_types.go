package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDepartmentCreated EventType = "department.created"
	EventDepartmentUpdated EventType = "department.updated"
	EventDepartmentDeleted EventType = "department.deleted"
	EventEmployeeCreated   EventType = "employee.created"
	EventEmployeeUpdated   EventType = "employee.updated"
	EventEmployeeDeleted   EventType = "employee.deleted"
	EventProjectCreated    EventType = "project.created"
	EventProjectUpdated    EventType = "project.updated"
	EventProjectDeleted    EventType = "project.deleted"
)

// AllTypes lists every event type in publication order of the lifecycle.
var AllTypes = []EventType{
	EventDepartmentCreated, EventDepartmentUpdated, EventDepartmentDeleted,
	EventEmployeeCreated, EventEmployeeUpdated, EventEmployeeDeleted,
	EventProjectCreated, EventProjectUpdated, EventProjectDeleted,
}

// Event represents a committed change emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// DepartmentPayload describes a department after the change.
type DepartmentPayload struct {
	Name string `json:"name"`
}

// EmployeePayload describes an employee after the change.
type EmployeePayload struct {
	Email        string `json:"email"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// ProjectPayload describes a project after the change.
type ProjectPayload struct {
	Name    string `json:"name"`
	EndDate string `json:"end_date"`
}
