package domain

import "slices"

// parseEnum is the single validation path for every enumerated field.
func parseEnum[T ~string](field, value string, allowed []T) (T, error) {
	v := T(value)
	if !slices.Contains(allowed, v) {
		return "", NewInvalidValueError(field, allowed)
	}
	return v, nil
}
