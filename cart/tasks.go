package cart

import (
	"context"
	"fmt"
)

// task is one step of a merge plan.
type task struct {
	op  string
	run func(ctx context.Context) error
}

// MergeError reports which step of a merge failed. Steps after it were not attempted.
type MergeError struct {
	Step  int // 1-based
	Total int
	Op    string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge step %d/%d (%s) failed: %v", e.Step, e.Total, e.Op, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// runSequential runs tasks in order, each to completion before the next starts,
// and stops at the first failure.
func runSequential(ctx context.Context, tasks []task) error {
	for i, t := range tasks {
		if err := t.run(ctx); err != nil {
			return &MergeError{Step: i + 1, Total: len(tasks), Op: t.op, Err: err}
		}
	}
	return nil
}
