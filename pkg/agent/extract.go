package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/matzehuels/flightdeck/pkg/errors"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)```json\\s*")
	fenceCloseRe = regexp.MustCompile("(?m)```\\s*$")
	successRe    = regexp.MustCompile(`"success"\s*:\s*(true|false)`)
)

// ExtractJSON pulls the verdict object out of a raw model completion.
//
// Smaller local models wrap their answer in markdown fences, echo the
// schema from the prompt, or append prose. The extraction strips fences
// first, then anchors on the `"success": <bool>` pair to find the
// object that carries actual values rather than the schema example. If
// no such pair exists it falls back to the longest balanced object in
// the text.
func ExtractJSON(raw string) string {
	raw = fenceOpenRe.ReplaceAllString(raw, "")
	raw = fenceCloseRe.ReplaceAllString(raw, "")
	raw = strings.TrimSpace(raw)

	if loc := successRe.FindStringIndex(raw); loc != nil {
		start := loc[0]
		for i := loc[0]; i >= 0; i-- {
			if raw[i] == '{' {
				start = i
				break
			}
		}
		if obj, ok := balancedObject(raw, start); ok {
			return obj
		}
	}

	// Fallback: no value-carrying "success" pair found. Take the longest
	// balanced object, which in practice is the data rather than an
	// inline schema snippet.
	var longest string
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		if obj, ok := balancedObject(raw, i); ok && len(obj) > len(longest) {
			longest = obj
		}
	}
	if longest != "" {
		return longest
	}
	return raw
}

// balancedObject returns the brace-balanced object starting at start.
func balancedObject(s string, start int) (string, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseResult decodes a raw model completion into a Result.
func ParseResult(raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.New(errors.ErrCodeAgentResponse, "model returned no content")
	}

	var res Result
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &res); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeAgentResponse, err, "decode model response")
	}
	return res, nil
}
