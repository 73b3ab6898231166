package validate

import (
	"regexp"
	"strings"
)

var stateSuffixPattern = regexp.MustCompile(`^[A-Za-z .]+,\s*[A-Z]{2}$`)

// SplitLocations turns a free-form location string into a list. Semicolons,
// pipes, and slashes always split; commas split only when the string is not
// a single "City, ST" pair, so "Atlanta, GA" stays one location while
// "Atlanta, Austin, Remote" becomes three.
func SplitLocations(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	for _, sep := range []string{";", "|", " / ", " and ", " or "} {
		if strings.Contains(raw, sep) {
			return splitAndTrim(raw, sep)
		}
	}

	if strings.Contains(raw, ",") && !stateSuffixPattern.MatchString(raw) {
		return splitAndTrim(raw, ",")
	}
	return []string{raw}
}

func splitAndTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
