package protocol

import "testing"

func TestParseTagKnown(t *testing.T) {
	for _, s := range []string{"gs", "p", "sm", "rm", "rk"} {
		if _, err := ParseTag(s); err != nil {
			t.Fatalf("ParseTag(%q) returned error: %v", s, err)
		}
	}
}

func TestParseTagUnknown(t *testing.T) {
	if _, err := ParseTag("xx"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}
