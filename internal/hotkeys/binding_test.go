package hotkeys

import "testing"

func TestParseBinding_DefaultCombination(t *testing.T) {
	b, err := ParseBinding("Cmd+Shift+`")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(b.Modifiers) != 2 || b.Modifiers[0] != "cmd" || b.Modifiers[1] != "shift" {
		t.Fatalf("expected modifiers [cmd shift], got %v", b.Modifiers)
	}
	if b.Key != "grave" {
		t.Fatalf("expected key grave, got %q", b.Key)
	}
	if got := b.X11Sequence(); got != "Mod4-Shift-grave" {
		t.Fatalf("expected X11 sequence Mod4-Shift-grave, got %q", got)
	}
}

func TestParseBinding_Aliases(t *testing.T) {
	cases := []struct {
		in      string
		wantX11 string
	}{
		{"super+space", "Mod4-space"},
		{"Control+Alt+t", "Control-Mod1-t"},
		{"ctrl+option+Enter", "Control-Mod1-Return"},
		{"meta+shift+F5", "Mod4-Shift-F5"},
		{"alt+.", "Mod1-period"},
	}

	for _, tc := range cases {
		b, err := ParseBinding(tc.in)
		if err != nil {
			t.Fatalf("ParseBinding(%q) returned error: %v", tc.in, err)
		}
		if got := b.X11Sequence(); got != tc.wantX11 {
			t.Fatalf("ParseBinding(%q).X11Sequence() = %q, want %q", tc.in, got, tc.wantX11)
		}
	}
}

func TestParseBinding_RequiresModifier(t *testing.T) {
	for _, in := range []string{"", "`", "grave", "x"} {
		if _, err := ParseBinding(in); err == nil {
			t.Fatalf("expected error for binding %q", in)
		}
	}
}

func TestParseBinding_RejectsUnknownTokens(t *testing.T) {
	if _, err := ParseBinding("hyper+x"); err == nil {
		t.Fatalf("expected error for unknown modifier")
	}
	if _, err := ParseBinding("ctrl+pagedown"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := ParseBinding("ctrl+f13"); err == nil {
		t.Fatalf("expected error for out-of-range function key")
	}
}

func TestBinding_String(t *testing.T) {
	b, err := ParseBinding("Cmd+Shift+`")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.String(); got != "cmd+shift+grave" {
		t.Fatalf("expected cmd+shift+grave, got %q", got)
	}
}
