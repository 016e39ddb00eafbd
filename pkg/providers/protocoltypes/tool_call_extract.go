package protocoltypes

import (
	"encoding/json"
	"strings"
)

const (
	toolCallOpenTag  = "<tool_call>"
	toolCallCloseTag = "</tool_call>"
)

// ExtractTaggedToolCalls parses <tool_call> blocks that some models emit
// inline in their response text instead of using structured tool calling.
// Each block holds one JSON object of the form {"name": ..., "arguments":
// {...}}. Returns the decoded calls and the surrounding prose with the
// blocks stripped out.
func ExtractTaggedToolCalls(text string) ([]ToolCall, string) {
	var calls []ToolCall
	var prose strings.Builder

	rest := text
	for {
		start := strings.Index(rest, toolCallOpenTag)
		if start == -1 {
			prose.WriteString(rest)
			break
		}
		prose.WriteString(rest[:start])
		rest = rest[start+len(toolCallOpenTag):]

		body := rest
		if end := strings.Index(rest, toolCallCloseTag); end != -1 {
			body = rest[:end]
			rest = rest[end+len(toolCallCloseTag):]
		} else {
			// Unterminated block: take everything to the end.
			rest = ""
		}

		var decoded struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &decoded); err != nil {
			continue
		}
		calls = append(calls, ToolCall{
			Name:      decoded.Name,
			Arguments: decoded.Arguments,
		})
	}

	return calls, strings.TrimSpace(prose.String())
}

// FindMatchingBrace finds the index after the closing brace matching the
// opening brace at pos, or pos when unbalanced.
func FindMatchingBrace(text string, pos int) int {
	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return pos
}
