package prompt

import "strings"

const (
	commandMarker     = "COMMAND:"
	explanationMarker = "EXPLANATION:"
	fence             = "```"
)

// Response is a model reply split into its parts. Either field may be
// empty.
type Response struct {
	Command     string
	Explanation string
}

// ParseResponse extracts the command and explanation from text.
//
// The command is the rest of the COMMAND: line. Without a usable COMMAND:
// marker it falls back to the first fenced code block, then to the first
// non-blank line. The explanation is everything after EXPLANATION:.
func ParseResponse(text string) Response {
	var r Response

	if _, after, ok := strings.Cut(text, commandMarker); ok {
		end := strings.IndexByte(after, '\n')
		if end < 0 {
			end = strings.Index(after, explanationMarker)
		}
		if end < 0 {
			end = len(after)
		}
		r.Command = strings.TrimSpace(after[:end])
	}

	if _, after, ok := strings.Cut(text, explanationMarker); ok {
		r.Explanation = strings.TrimSpace(after)
	}

	if r.Command == "" {
		r.Command = firstCodeBlock(text)
	}
	if r.Command == "" {
		r.Command = firstNonBlankLine(text)
	}

	return r
}

// firstCodeBlock returns the trimmed body of the first ``` fence. The
// rest of the opening fence line (a language tag) is skipped.
func firstCodeBlock(text string) string {
	_, after, ok := strings.Cut(text, fence)
	if !ok {
		return ""
	}
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	}
	body, _, ok := strings.Cut(after, fence)
	if !ok {
		return ""
	}
	return strings.TrimSpace(body)
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
