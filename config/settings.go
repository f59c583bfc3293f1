package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmgilman/gitfarm/errors"
)

// Settings is the worker configuration consumed by the materializer.
type Settings struct {
	// SharedRoot is the read-only shared cache root.
	SharedRoot string `json:"sharedRoot"`

	// WorkingRoot is where checkouts are created.
	WorkingRoot string `json:"workingRoot"`

	// GitBinary is the git executable name or path.
	GitBinary string `json:"gitBinary"`

	// CommandTimeout bounds each git command, as a Go duration string.
	CommandTimeout string `json:"commandTimeout"`

	// LockRepositories enables the cross-process per-repository file lock.
	LockRepositories bool `json:"lockRepositories"`

	// NativeResolve resolves commits with go-git instead of git rev-list.
	NativeResolve bool `json:"nativeResolve"`

	// Ledger records checkouts for status and pruning.
	Ledger bool `json:"ledger"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel"`
}

// Defaults returns Settings with every optional field at its default and
// both roots empty.
func Defaults() Settings {
	return Settings{
		GitBinary:        "git",
		LockRepositories: true,
		Ledger:           true,
		LogLevel:         "info",
	}
}

// Validate checks the invariants the schema cannot express.
func (s Settings) Validate() error {
	for name, root := range map[string]string{"sharedRoot": s.SharedRoot, "workingRoot": s.WorkingRoot} {
		if root == "" {
			return errors.WithContext(errors.New(errors.CodeInvalidConfig, "root path is required"), "field", name)
		}
		if !filepath.IsAbs(root) {
			return errors.WithContextMap(errors.New(errors.CodeInvalidConfig, "root path must be absolute"),
				map[string]any{"field": name, "value": root})
		}
	}

	shared, working := filepath.Clean(s.SharedRoot), filepath.Clean(s.WorkingRoot)
	if shared == working || within(working, shared) {
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidConfig, "working root must not be the shared root or lie inside it"),
			map[string]any{"sharedRoot": shared, "workingRoot": working})
	}

	if _, err := s.Timeout(); err != nil {
		return err
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Timeout parses CommandTimeout. Empty means no timeout.
func (s Settings) Timeout() (time.Duration, error) {
	if s.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.CommandTimeout)
	if err != nil {
		return 0, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid command timeout",
			map[string]any{"value": s.CommandTimeout})
	}
	if d < 0 {
		return 0, errors.WithContext(errors.New(errors.CodeInvalidConfig, "command timeout must not be negative"),
			"value", s.CommandTimeout)
	}
	return d, nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.WithContext(errors.New(errors.CodeInvalidConfig, "unknown log level"), "value", name)
	}
}

// within reports whether path lies strictly inside dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
