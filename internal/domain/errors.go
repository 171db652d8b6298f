package domain

import "fmt"

// ConflictError reports a battery whose postcode is already registered
type ConflictError struct {
	Postcode string
}

func (e *ConflictError) Error() string {
	return "Battery already exists with battery post code: " + e.Postcode
}

// NotFoundError reports a lookup that matched no record
type NotFoundError struct {
	Resource string
	Field    string
	Value    interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s : %v", e.Resource, e.Field, e.Value)
}

// BatteryNotFound builds the NotFoundError for an id lookup
func BatteryNotFound(id int64) *NotFoundError {
	return &NotFoundError{Resource: "Battery", Field: "batteryId", Value: id}
}
