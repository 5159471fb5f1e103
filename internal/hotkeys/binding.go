package hotkeys

import (
	"fmt"
	"strings"
)

// Binding is a parsed hotkey combination in canonical form: lowercase
// modifier names (cmd, ctrl, alt, shift) and a keysym-style key name.
type Binding struct {
	Modifiers []string
	Key       string
}

// modifierAliases maps the spellings accepted in config files to canonical
// modifier names.
var modifierAliases = map[string]string{
	"cmd":     "cmd",
	"super":   "cmd",
	"win":     "cmd",
	"meta":    "cmd",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"shift":   "shift",
}

// punctuationKeysyms maps single-character punctuation to keysym names.
var punctuationKeysyms = map[string]string{
	"`":  "grave",
	"-":  "minus",
	"=":  "equal",
	"[":  "bracketleft",
	"]":  "bracketright",
	";":  "semicolon",
	"'":  "apostrophe",
	"\\": "backslash",
	",":  "comma",
	".":  "period",
	"/":  "slash",
}

// namedKeys are spelled-out key names accepted as-is.
var namedKeys = map[string]bool{
	"space":        true,
	"return":       true,
	"tab":          true,
	"escape":       true,
	"grave":        true,
	"minus":        true,
	"equal":        true,
	"bracketleft":  true,
	"bracketright": true,
	"semicolon":    true,
	"apostrophe":   true,
	"backslash":    true,
	"comma":        true,
	"period":       true,
	"slash":        true,
}

// ParseBinding parses a "Mod+Mod+Key" combination. At least one modifier is
// required: an unmodified key would shadow normal typing system-wide.
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(s, "+")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}

	if len(tokens) < 2 {
		return Binding{}, fmt.Errorf("invalid binding %q: need at least one modifier and a key", s)
	}

	var b Binding
	for _, tok := range tokens[:len(tokens)-1] {
		mod, ok := modifierAliases[strings.ToLower(tok)]
		if !ok {
			return Binding{}, fmt.Errorf("invalid binding %q: unknown modifier %q", s, tok)
		}
		b.Modifiers = append(b.Modifiers, mod)
	}

	key, err := canonicalKey(tokens[len(tokens)-1])
	if err != nil {
		return Binding{}, fmt.Errorf("invalid binding %q: %w", s, err)
	}
	b.Key = key
	return b, nil
}

func canonicalKey(raw string) (string, error) {
	k := strings.ToLower(raw)

	if sym, ok := punctuationKeysyms[k]; ok {
		return sym, nil
	}
	if len(k) == 1 {
		c := k[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return k, nil
		}
		return "", fmt.Errorf("unknown key %q", raw)
	}

	switch k {
	case "enter":
		return "return", nil
	case "esc":
		return "escape", nil
	}
	if namedKeys[k] {
		return k, nil
	}
	if len(k) >= 2 && k[0] == 'f' {
		if n := fkeyNumber(k[1:]); n >= 1 && n <= 12 {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown key %q", raw)
}

func fkeyNumber(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// x11Modifiers maps canonical modifiers to X11 modifier names.
var x11Modifiers = map[string]string{
	"cmd":   "Mod4",
	"ctrl":  "Control",
	"alt":   "Mod1",
	"shift": "Shift",
}

// x11Keysyms maps canonical key names whose X11 keysym differs in case.
var x11Keysyms = map[string]string{
	"return": "Return",
	"tab":    "Tab",
	"escape": "Escape",
}

// X11Sequence renders the binding in the "Mod4-Shift-grave" form the
// keybind package parses.
func (b Binding) X11Sequence() string {
	parts := make([]string, 0, len(b.Modifiers)+1)
	for _, m := range b.Modifiers {
		parts = append(parts, x11Modifiers[m])
	}

	key := b.Key
	if sym, ok := x11Keysyms[key]; ok {
		key = sym
	} else if len(key) >= 2 && key[0] == 'f' && fkeyNumber(key[1:]) != 0 {
		key = "F" + key[1:]
	}

	return strings.Join(append(parts, key), "-")
}

func (b Binding) String() string {
	return strings.Join(append(append([]string{}, b.Modifiers...), b.Key), "+")
}
