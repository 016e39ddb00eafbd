package action

import "strings"

// keyAliases resolves dialect key names to the vocabulary the device
// understands. Sourced from the common divergences between provider key
// maps: browser-style arrow names, cmd/super vs command, option vs alt.
var keyAliases = map[string]string{
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"arrowup":    "up",
	"cmd":        "command",
	"esc":        "escape",
	"option":     "alt",
	"super":      "command",
	"return":     "enter",
	"pgdn":       "pagedown",
	"pgup":       "pageup",
}

// NormalizeKey lower-cases a key name, strips underscores, and resolves
// aliases. Unknown keys pass through normalized so new device keys keep
// working without a table update.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "_", "")
	if canonical, ok := keyAliases[k]; ok {
		return canonical
	}
	return k
}

// NormalizeKeys normalizes every key in a chord, preserving order. The
// device presses the keys in order and releases them in reverse.
func NormalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, NormalizeKey(k))
	}
	return out
}

// SplitHotKeys turns a "+"-joined chord string such as "Ctrl+C" or
// "Cmd+Shift_Key" into normalized key names.
func SplitHotKeys(text string) []string {
	parts := strings.Split(text, "+")
	return NormalizeKeys(parts)
}
