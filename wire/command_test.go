package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackParseRoundTrip(t *testing.T) {
	packed, err := Pack("sm",
		Field{Data: []byte("bob"), LengthSize: 1},
		Field{Data: []byte("hello"), LengthSize: 2},
	)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	cmd, err := Parse(packed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Tag != "sm" {
		t.Fatalf("Tag = %q, want %q", cmd.Tag, "sm")
	}

	receiver, rest, err := ParsePart(1, cmd.Args)
	if err != nil {
		t.Fatalf("ParsePart(receiver): %v", err)
	}
	if diff := cmp.Diff([]byte("bob"), receiver); diff != "" {
		t.Fatalf("receiver mismatch (-want +got):\n%s", diff)
	}

	message, rest, err := ParsePart(2, rest)
	if err != nil {
		t.Fatalf("ParsePart(message): %v", err)
	}
	if diff := cmp.Diff([]byte("hello"), message); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
}

func TestPackFieldOverflow(t *testing.T) {
	_, err := Pack("sm", Field{Data: make([]byte, 256), LengthSize: 1})
	if err == nil {
		t.Fatal("expected overflow error for a 256-byte field with a 1-byte length prefix")
	}
}

func TestParseRejectsTruncatedTag(t *testing.T) {
	if _, err := Parse([]byte{5, 'h', 'i'}); err == nil {
		t.Fatal("expected error parsing a truncated tag")
	}
}

func TestParsePartRejectsTruncatedField(t *testing.T) {
	if _, _, err := ParsePart(2, []byte{0, 10, 'a'}); err == nil {
		t.Fatal("expected error parsing a field shorter than its declared length")
	}
}

func TestParseEmptyTag(t *testing.T) {
	packed, err := Pack("", Field{Data: []byte("x"), LengthSize: 1})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	cmd, err := Parse(packed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Tag != "" {
		t.Fatalf("Tag = %q, want empty", cmd.Tag)
	}
}
