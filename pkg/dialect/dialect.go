// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package dialect

import (
	"fmt"

	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

// Parser translates one provider's action payload into canonical actions.
// A parser never executes anything; it only normalizes vocabulary,
// coordinates, scroll units, and key names.
type Parser interface {
	Name() string
	Parse(resp *protocoltypes.ModelResponse) (*ParseResult, error)
}

// ParseResult carries the model's reasoning text and the canonical actions
// decoded from one response. An empty Actions slice means the model
// produced no actionable output this turn.
type ParseResult struct {
	Thought string
	Actions []action.Action
}

// UnknownActionError reports a dialect action name outside the parser's
// lookup table. It signals a model/configuration mismatch, so the retry
// wrapper treats it as fatal.
type UnknownActionError struct {
	Dialect string
	Action  string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("dialect %s: unknown action %q", e.Dialect, e.Action)
}

// Fatal marks the error as non-retryable.
func (e *UnknownActionError) Fatal() bool { return true }

// New returns the parser for a dialect name.
func New(name string) (Parser, error) {
	switch name {
	case DialectClaude:
		return &ClaudeParser{}, nil
	case DialectCUA:
		return &CUAParser{}, nil
	case DialectQwen:
		return &QwenParser{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (supported: %s, %s, %s)",
			name, DialectClaude, DialectCUA, DialectQwen)
	}
}

// Dialect names accepted by New.
const (
	DialectClaude = "claude"
	DialectCUA    = "cua"
	DialectQwen   = "qwen"
)

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func strArg(args map[string]interface{}, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

// coordPair decodes an [x, y] pair or an {x, y} object into pixel
// coordinates. Both encodings appear in the wild.
func coordPair(v interface{}) (int, int, bool) {
	switch pair := v.(type) {
	case []interface{}:
		if len(pair) < 2 {
			return 0, 0, false
		}
		x, okX := toInt(pair[0])
		y, okY := toInt(pair[1])
		return x, y, okX && okY
	case map[string]interface{}:
		x, okX := intArg(pair, "x")
		y, okY := intArg(pair, "y")
		return x, y, okX && okY
	default:
		return 0, 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func strSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
