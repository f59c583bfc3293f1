package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmgilman/gitfarm/errors"
)

// Exit codes.
const (
	ExitFailure     = 1
	ExitRefNotFound = 2
)

// ExitCode maps err to the process exit status. A commit missing from the
// shared cache gets its own status so callers can retry after the cache
// has been refreshed.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.HasCode(err, errors.CodeRefNotFound) {
		return ExitRefNotFound
	}
	return ExitFailure
}

// PrintError writes err to w, as a single JSON object when asJSON is set.
func PrintError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		if data, jerr := json.Marshal(errors.ToJSON(err)); jerr == nil {
			fmt.Fprintln(w, string(data))
			return
		}
	}
	fmt.Fprintln(w, "Error:", err)
}
