package audit

import "testing"

func Test_Presence(t *testing.T) {
	t.Parallel()
	if got := presence("secret-value"); got != "set" {
		t.Errorf("presence(non-empty): want set, got %q", got)
	}
	if got := presence(""); got != "unset" {
		t.Errorf("presence(empty): want unset, got %q", got)
	}
}

func Test_ValOrUnset(t *testing.T) {
	t.Parallel()
	if got := valOrUnset("qdrant.internal"); got != "qdrant.internal" {
		t.Errorf("valOrUnset(non-empty): want value back, got %q", got)
	}
	if got := valOrUnset(""); got != "unset" {
		t.Errorf("valOrUnset(empty): want unset, got %q", got)
	}
}

func Test_SanitiseConfigPath(t *testing.T) {
	t.Parallel()
	if got := sanitiseConfigPath(""); got != "none" {
		t.Errorf("empty path: want none, got %q", got)
	}
	if got := sanitiseConfigPath("/etc/aadis/config.yaml"); got != "/etc/aadis/config.yaml" {
		t.Errorf("non-home path should pass through, got %q", got)
	}
}
