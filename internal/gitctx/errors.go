package gitctx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRepository is matched by every *RepositoryError.
	ErrRepository = errors.New("repository error")

	// ErrUnknownCommit indicates a commit that no longer exists in the repository.
	ErrUnknownCommit = errors.New("unknown commit")

	// ErrNotAncestor indicates a boundary that is not reachable from the tip,
	// typically after history was rewritten.
	ErrNotAncestor = errors.New("commit is not an ancestor of the tip")

	// ErrNoCommits indicates a repository whose HEAD does not point at a commit yet.
	ErrNoCommits = errors.New("repository has no commits")
)

// RepositoryError describes a failed git invocation.
type RepositoryError struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *RepositoryError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Op)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRepository.
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepository
}

func newRepositoryError(args []string, stderr string, err error) *RepositoryError {
	op := ""
	if len(args) > 0 {
		op = args[0]
		args = args[1:]
	}
	return &RepositoryError{
		Op:     op,
		Args:   args,
		Stderr: strings.TrimSpace(stderr),
		Err:    err,
	}
}
