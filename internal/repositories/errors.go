package repositories

import "errors"

// ErrNotFound is returned when a record does not exist or is not visible to
// the requesting user. Callers cannot tell the two cases apart.
var ErrNotFound = errors.New("record not found")
