// Package pathutil parses path ids and collapses them for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

var pathPatterns = []pathPattern{
	{regexp.MustCompile(`^/notifications/\d+$`), "/notifications/:id"},
	{regexp.MustCompile(`^/notifications/\d+/retry$`), "/notifications/:id/retry"},
	{regexp.MustCompile(`^/recipients/\d+$`), "/recipients/:id"},
}

// NormalizePath replaces numeric ids with ":id" so request metrics keep a
// bounded label set. Query strings and a trailing slash are dropped; paths
// with no known pattern are returned unchanged.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
