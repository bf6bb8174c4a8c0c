package repository

import "errors"

// ErrNotFound is returned when a record does not exist or does not belong
// to the requesting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness constraint is violated
var ErrDuplicate = errors.New("record already exists")
