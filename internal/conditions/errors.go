package conditions

import (
	"errors"
	"fmt"
)

// SchemaError is returned when the imports field has an invalid shape.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// BannedConditionError is returned when a condition name collides with a
// condition reserved by the resolver or by TypeScript.
type BannedConditionError struct {
	Condition string
}

func (e *BannedConditionError) Error() string {
	return fmt.Sprintf("condition %s is not allowed in the imports field with preconstruct", e.Condition)
}

// MissingDefaultError is returned when a specifier has no branch matching
// some combination of conditions.
type MissingDefaultError struct {
	Specifier string
}

func (e *MissingDefaultError) Error() string {
	return fmt.Sprintf("imports.%s is missing a default", e.Specifier)
}

// TooManyConditionsError is returned when the number of distinct conditions
// exceeds the configured limit.
type TooManyConditionsError struct {
	Count int
	Max   int
}

func (e *TooManyConditionsError) Error() string {
	if e.Count > 30 {
		return fmt.Sprintf("too many conditions in the imports field: %d (max %d)", e.Count, e.Max)
	}
	return fmt.Sprintf("too many conditions in the imports field: %d (max %d, %d combinations would be built)", e.Count, e.Max, 1<<e.Count)
}

// InternalError indicates a bug in this package, never a configuration mistake.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

// IsUserError reports whether the error is caused by the package
// configuration rather than by a defect.
func IsUserError(err error) bool {
	var schemaErr *SchemaError
	var bannedErr *BannedConditionError
	var missingErr *MissingDefaultError
	var tooManyErr *TooManyConditionsError
	return errors.As(err, &schemaErr) || errors.As(err, &bannedErr) || errors.As(err, &missingErr) || errors.As(err, &tooManyErr)
}
