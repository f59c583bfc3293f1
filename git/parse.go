package git

import (
	"strings"
)

// parseSubmoduleURLs parses `git config --null --get-regexp` output. Each
// record is
//
//	submodule.<name>.url\n<url>\x00
//
// Names may contain dots and spaces, so the name is everything between the
// "submodule." prefix and the final ".url". Malformed records are skipped.
// Path is left empty; it is only known from .gitmodules.
func parseSubmoduleURLs(output string) []Submodule {
	var subs []Submodule

	for _, record := range strings.Split(output, "\x00") {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}

		key, url, ok := strings.Cut(record, "\n")
		if !ok {
			continue
		}
		if !strings.HasPrefix(key, "submodule.") || !strings.HasSuffix(key, ".url") {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(key, "submodule."), ".url")
		if name == "" {
			continue
		}

		subs = append(subs, Submodule{
			Name: name,
			URL:  strings.TrimSpace(url),
		})
	}
	return subs
}
