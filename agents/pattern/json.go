package pattern

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexcodex/reactcoder/framework"
)

// DefaultExtractThreshold is the minimum share of the response a candidate
// JSON block must cover to be preferred over the whole text.
const DefaultExtractThreshold = 0.2

var fencedBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```"),
}

// ExtractJSON returns the substring of a model response most likely to hold
// its JSON payload. Candidates are fenced code blocks and the first balanced
// {...} object; the longest one covering at least threshold of the trimmed
// response wins. Without a qualifying candidate the trimmed response is
// returned with a wrapping ```json fence removed. It never fails.
func ExtractJSON(response string, threshold float64) string {
	text := strings.TrimSpace(response)
	if text == "" {
		return text
	}
	minLen := float64(utf8.RuneCountInString(text)) * threshold

	var best string
	bestLen := -1
	consider := func(block string) {
		n := utf8.RuneCountInString(block)
		if float64(n) >= minLen && n > bestLen {
			best, bestLen = block, n
		}
	}
	for _, re := range fencedBlockPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			consider(strings.TrimSpace(m[1]))
		}
	}
	if block, ok := firstBalancedObject(text); ok {
		consider(block)
	}
	if bestLen >= 0 {
		return best
	}

	if strings.HasPrefix(text, "```") {
		first, _, _ := strings.Cut(text, "\n")
		if first = strings.TrimSpace(first); first == "```" || first == "```json" {
			return StripCodeFence(text)
		}
	}
	return text
}

// firstBalancedObject scans from the first '{' and returns the object that
// closes it by brace depth. Braces inside strings are not special.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// StripCodeFence removes one wrapping markdown fence: the opening ``` line
// and a trailing ```. Text that does not start with a fence is returned
// trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	_, rest, found := strings.Cut(text, "\n")
	if !found {
		return ""
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}

// DecodeJSON unmarshals text into v, reporting failures as a
// *framework.ParseError that keeps the start of the raw text.
func DecodeJSON(text string, v any, context string) error {
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return framework.NewParseError("invalid JSON in "+context, text, err)
	}
	return nil
}
