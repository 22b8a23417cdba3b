package props

import "fmt"

// NotFoundError is returned when a property is read that neither exists in
// the raw data nor has a getter or default. A property that exists with a
// null value is not a NotFoundError.
type NotFoundError struct {
	Property string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("property %q not found", e.Property)
}

// InvalidNameError is returned when a jail identity fails validation.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid jail name %q: %s", e.Name, e.Reason)
}

// InvalidValueError is returned when a setter receives input incompatible
// with the property's shape.
type InvalidValueError struct {
	Property string
	Value    any
	Reason   string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for property %q: %s",
		e.Value, e.Property, e.Reason)
}
