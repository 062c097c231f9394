package sqlengine

import "errors"

// ErrAlreadyExists is returned internally by a dialect's create primitive
// before being translated into an Unchanged result; callers never see it.
var ErrAlreadyExists = errors.New("sqlengine: already exists")

// ErrNotFound is returned internally by a dialect's reset/drop primitive
// when the target role or database does not exist.
var ErrNotFound = errors.New("sqlengine: not found")
