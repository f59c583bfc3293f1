package git

import (
	"context"
	stderrors "errors"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/exec"
)

// mapExecError converts a failed git invocation into a PlatformError.
// A run ended by the caller's context maps to CodeTimeout. Everything else
// maps to CodeExecutionFailed.
func mapExecError(ctx context.Context, err error, command []string) error {
	errCtx := map[string]any{
		"command": strings.Join(command, " "),
	}

	var execErr *exec.ExecError
	if stderrors.As(err, &execErr) {
		errCtx["exit_code"] = execErr.ExitCode
		if stderr := strings.TrimSpace(execErr.Stderr); stderr != "" {
			errCtx["stderr"] = firstLine(stderr)
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.WrapWithContext(err, errors.CodeTimeout, "git command interrupted: "+ctxErr.Error(), errCtx)
	}
	return errors.WrapWithContext(err, errors.CodeExecutionFailed, "git command failed", errCtx)
}

// classifyError maps go-git errors to platform codes. Unknown errors are
// wrapped as CodeInternal so callers always receive a PlatformError.
func classifyError(err error, message string) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, gogit.ErrRepositoryNotExists):
		return errors.Wrap(err, errors.CodeNotFound, message+": repository does not exist")
	case stderrors.Is(err, plumbing.ErrReferenceNotFound),
		stderrors.Is(err, plumbing.ErrObjectNotFound):
		return errors.Wrap(err, errors.CodeRefNotFound, message+": revision not found")
	case stderrors.Is(err, gogit.ErrIsBareRepository):
		return errors.Wrap(err, errors.CodeInvalidInput, message+": repository is bare")
	default:
		return errors.Wrap(err, errors.CodeInternal, message)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
