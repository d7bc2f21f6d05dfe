// README: Envelope unwrapper; strips legacy and canonical wrappers from frames.
package stream

import "strings"

const (
	// dataPrefix is the canonical wire form: `data: <json>`.
	dataPrefix = "data: "
	// legacyMarker opens the escaped wrapper some older backends still emit:
	// `... data("<escaped json>") ...`.
	legacyMarker = `data("`
)

// Unwrap extracts the JSON payload text from one frame. Two envelope shapes
// are recognized, tried in order: the legacy escaped wrapper and the canonical
// "data: " prefix. A frame matching neither is returned verbatim when it
// plausibly is bare JSON; otherwise ok is false and the frame should be
// skipped as protocol noise (SSE comments, retry hints). Unwrap never parses
// JSON itself; decoding is the caller's job.
func Unwrap(frame string) (payload string, ok bool) {
	if inner, found := unwrapLegacy(frame); found {
		return inner, true
	}
	if strings.HasPrefix(frame, dataPrefix) {
		return frame[len(dataPrefix):], true
	}
	if looksLikeJSON(frame) {
		return frame, true
	}
	return "", false
}

// unwrapLegacy handles the double-wrapped form. The quoted span is located,
// backslash escapes are undone, and an inner "data: " prefix is stripped when
// present; without the inner prefix the whole unescaped span is the payload.
func unwrapLegacy(frame string) (string, bool) {
	start := strings.Index(frame, legacyMarker)
	if start < 0 {
		return "", false
	}
	rest := frame[start+len(legacyMarker):]

	end := closingQuote(rest)
	if end < 0 {
		return "", false
	}
	inner := unescape(rest[:end])

	if i := strings.Index(inner, dataPrefix); i >= 0 {
		inner = inner[i+len(dataPrefix):]
	}
	return inner, true
}

// closingQuote finds the first double quote not preceded by an odd number of
// backslashes, i.e. the real end of the quoted span.
func closingQuote(s string) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return i
		}
	}
	return -1
}

// unescape undoes the two escapes the legacy wrapper applies: \" and \\.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// looksLikeJSON checks the first non-space byte so keep-alive comment lines
// are not forwarded to a guaranteed decode failure.
func looksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
