package repositories

import "errors"

// Sentinel errors shared by every repository. Handlers match on these with
// errors.Is to pick a status code; the wrapped pg error stays in the chain
// for logging.
var (
	ErrNotFound = errors.New("repositories: not found")
	ErrConflict = errors.New("repositories: conflict")
)
