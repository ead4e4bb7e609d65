package geometry

import (
	"errors"
	"fmt"
)

// Code is a machine-readable geometry failure code.
type Code string

const (
	ErrCodeEmptyOuter           Code = "EMPTY_OUTER"
	ErrCodeEmptyRegion          Code = "EMPTY_REGION"
	ErrCodeRegionTooSmall       Code = "REGION_TOO_SMALL"
	ErrCodeRegionTooLarge       Code = "REGION_TOO_LARGE"
	ErrCodeExclusionOutOfBounds Code = "EXCLUSION_OUT_OF_BOUNDS"
)

// GeometryError reports which region constraint was violated. Index is the
// offending exclusion, or -1 when the failure concerns the whole region.
// Actual and Limit carry the measured and permitted values where they apply.
type GeometryError struct {
	Code    Code
	Message string
	Index   int
	Actual  float64
	Limit   float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, index int, actual, limit float64, format string, args ...any) *GeometryError {
	return &GeometryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Index:   index,
		Actual:  actual,
		Limit:   limit,
	}
}

// IsCode reports whether err is a *GeometryError with the given code.
func IsCode(err error, code Code) bool {
	var e *GeometryError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
