// Package pathmatch implements Ant-style glob path matching, the pattern
// language used for routing, security filters, cache pattern admission
// and mock-backend template selection.
//
// Supported segment tokens:
//
//	?       matches exactly one character within a path segment
//	*       matches zero or more characters within a path segment
//	**      matches zero or more path segments, including none
//	{name}  matches one path segment, capturing it under "name"
//
// Patterns are compiled once (segments split on "/") and reused across
// many Match calls, the same shape as compiling a regexp once and running
// it many times.
package pathmatch

import "strings"

// Pattern is a compiled Ant-style glob, safe for concurrent use.
type Pattern struct {
	raw      string
	segments []string
}

// Compile splits pattern into its "/"-delimited segments once. It never
// fails; any string is a valid pattern, even if it matches nothing useful.
func Compile(pattern string) *Pattern {
	return &Pattern{
		raw:      pattern,
		segments: splitPath(pattern),
	}
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Match reports whether path satisfies the compiled pattern.
func (p *Pattern) Match(path string) bool {
	return matchSegments(p.segments, splitPath(path))
}

// Match compiles pattern and matches path against it in one call. Prefer
// Compile when the same pattern is checked against many paths (routing
// tables, blacklists) so the split only happens once.
func Match(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

// Extract matches path against the compiled pattern and, on success,
// returns the name→value map of every {name} segment captured along the
// way. It returns (nil, false) when the pattern does not match at all.
func (p *Pattern) Extract(path string) (map[string]string, bool) {
	return extractSegments(p.segments, splitPath(path))
}

// Extract compiles pattern and extracts path's {name} captures in one call.
func Extract(pattern, path string) (map[string]string, bool) {
	return extractSegments(splitPath(pattern), splitPath(path))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	head := pattern[0]
	if head == "**" {
		// ** matches zero or more segments: try consuming 0, 1, 2, ... of path.
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		// A bare * can still match the empty segment of a
		// trailing-slash-normalized path, so "**/*" accepts "/".
		return allMatchEmpty(pattern)
	}

	if !matchSegment(head, path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

// allMatchEmpty reports whether every remaining pattern segment can match
// an exhausted path: ** matches zero segments and a bare * matches the
// empty segment.
func allMatchEmpty(pattern []string) bool {
	for _, seg := range pattern {
		if seg != "*" && seg != "**" {
			return false
		}
	}
	return true
}

// matchSegment matches a single "/"-free pattern segment (which may use ?,
// *, or {name}) against a single path segment.
func matchSegment(pattern, segment string) bool {
	if _, ok := captureName(pattern); ok {
		return true // named capture matches any single segment
	}
	return matchGlob(pattern, segment)
}

// captureName reports whether segment is a "{name}" token and, if so,
// returns the name between the braces.
func captureName(segment string) (string, bool) {
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") && len(segment) > 2 {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

// extractSegments mirrors matchSegments but accumulates {name} captures
// along the successful path. ** backtracks by trying each candidate split;
// captures are only added on the way back from a successful match, so a
// failed branch never leaks partial bindings into the result.
func extractSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) == 0 {
		if len(path) == 0 {
			return map[string]string{}, true
		}
		return nil, false
	}

	head := pattern[0]
	if head == "**" {
		for i := 0; i <= len(path); i++ {
			if rest, ok := extractSegments(pattern[1:], path[i:]); ok {
				return rest, true
			}
		}
		return nil, false
	}

	if len(path) == 0 {
		if allMatchEmpty(pattern) {
			return map[string]string{}, true
		}
		return nil, false
	}

	name, isCapture := captureName(head)
	if !isCapture && !matchGlob(head, path[0]) {
		return nil, false
	}

	rest, ok := extractSegments(pattern[1:], path[1:])
	if !ok {
		return nil, false
	}
	if isCapture {
		rest[name] = path[0]
	}
	return rest, true
}

// matchGlob matches ? and * within a single segment via straightforward
// recursive backtracking (segments are short, so this never needs memoizing).
func matchGlob(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}

	switch pattern[0] {
	case '*':
		// try consuming 0..len(s) characters for this *
		for i := 0; i <= len(s); i++ {
			if matchGlob(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if s == "" {
			return false
		}
		return matchGlob(pattern[1:], s[1:])
	default:
		if s == "" || pattern[0] != s[0] {
			return false
		}
		return matchGlob(pattern[1:], s[1:])
	}
}
