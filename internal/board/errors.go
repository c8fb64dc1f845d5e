package board

import (
	"errors"
	"fmt"
)

// ErrNoColumnSelected is returned when a card creation is attempted
// without a target column. The presentation layer must force a column
// selection before calling CreateCard.
var ErrNoColumnSelected = errors.New("no column selected for new task")

// ErrColumnNameRequired is returned when a column is created or renamed
// with a name that is empty after trimming.
var ErrColumnNameRequired = errors.New("column name is required")

// CapacityError indicates a board limit was reached. It is raised before
// any network call is attempted.
type CapacityError struct {
	// Resource is "columns" or "tasks".
	Resource string
	Limit    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: at most %d %s per project", e.Limit, e.Resource)
}

// IsCapacityExceeded reports whether err (or any error in its chain) is a
// CapacityError.
func IsCapacityExceeded(err error) bool {
	var capErr *CapacityError
	return errors.As(err, &capErr)
}
