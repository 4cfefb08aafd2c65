package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// CandidateNotFoundError reports an unknown candidate id together with a few
// valid ids the caller can try instead.
type CandidateNotFoundError struct {
	CandidateID int64
	ExampleIDs  []int64
}

func (e *CandidateNotFoundError) Error() string {
	if len(e.ExampleIDs) == 0 {
		return fmt.Sprintf("candidate %d not found", e.CandidateID)
	}
	examples := make([]string, 0, len(e.ExampleIDs))
	for _, id := range e.ExampleIDs {
		examples = append(examples, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("candidate %d not found, try %s", e.CandidateID, strings.Join(examples, ", "))
}
