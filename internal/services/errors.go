package services

import (
	"fmt"
)

// AssignmentError reports which users made an assignment batch fail.
// It unwraps to one of the sentinel errors so callers can use errors.Is.
type AssignmentError struct {
	Err     error
	TaskID  uint64
	UserIDs []uint64
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("%v (task %d, users %v)", e.Err, e.TaskID, e.UserIDs)
}

func (e *AssignmentError) Unwrap() error {
	return e.Err
}
