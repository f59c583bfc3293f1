package materialize

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmgilman/gitfarm/errors"
)

// locatorPattern captures the trailing <namespace>/<name>.git of a
// repository identifier. The segment before the namespace is separated by
// "/" (URLs, paths) or ":" (scp-style addresses).
var locatorPattern = regexp.MustCompile(`(?:^|[/:])([^/:]+)/([^/:]+?)\.git/?$`)

// Locator is the normalized namespace/name pair derived from a repository
// identifier.
type Locator struct {
	Namespace string
	Name      string
}

// ParseLocator derives a Locator from identifier, e.g.
//
//	https://git.example.com/org/app.git → org/app
//	git@git.example.com:org/app.git     → org/app
//	/mnt/shared/org/app.git             → org/app
//
// Identifiers without a trailing <namespace>/<name>.git return
// CodeInvalidInput.
func ParseLocator(identifier string) (Locator, error) {
	m := locatorPattern.FindStringSubmatch(strings.TrimSpace(identifier))
	if m == nil {
		return Locator{}, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "repository identifier must end in <namespace>/<name>.git"),
			"repository", identifier)
	}

	loc := Locator{Namespace: m[1], Name: m[2]}
	for _, part := range []string{loc.Namespace, loc.Name} {
		if part == "." || part == ".." {
			return Locator{}, errors.WithContext(
				errors.New(errors.CodeInvalidInput, "repository identifier contains a relative path segment"),
				"repository", identifier)
		}
	}
	return loc, nil
}

// String returns namespace/name.
func (l Locator) String() string {
	return l.Namespace + "/" + l.Name
}

// SharedPath returns <root>/<namespace>/<name>.git.
func (l Locator) SharedPath(root string) string {
	return filepath.Join(root, l.Namespace, l.Name+".git")
}

// CheckoutPath returns <root>/<namespace>/<name>.
func (l Locator) CheckoutPath(root string) string {
	return filepath.Join(root, l.Namespace, l.Name)
}

// LockPath returns <root>/<namespace>/.<name>.lock, the cross-process lock
// file guarding CheckoutPath.
func (l Locator) LockPath(root string) string {
	return filepath.Join(root, l.Namespace, "."+l.Name+".lock")
}
