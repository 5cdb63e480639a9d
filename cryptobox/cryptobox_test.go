package cryptobox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRSARoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	der, err := MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPublicKey: %v", err)
	}
	pub, err := ParsePublicKey(der)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}

	plaintext := append(SessionIV(), SessionKey()...)
	ciphertext, err := Encrypt(pub, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt(priv, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if diff := cmp.Diff(plaintext, got); diff != "" {
		t.Fatalf("rsa round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAESRoundTrip(t *testing.T) {
	key := SessionKey()
	iv := SessionIV()
	plaintext := []byte("alice")

	ciphertext, err := Encrypt(key, iv, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ciphertext) != len(plaintext) {
		t.Fatalf("ciphertext length = %d, want %d (CFB has no padding)", len(ciphertext), len(plaintext))
	}

	got, err := Decrypt(key, iv, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if diff := cmp.Diff(plaintext, got); diff != "" {
		t.Fatalf("aes round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAESIVReuseAcrossFrames(t *testing.T) {
	box := NewBox()

	first, err := box.Seal([]byte("frame one"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	second, err := box.Seal([]byte("frame two"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	gotFirst, err := box.Open(first)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	gotSecond, err := box.Open(second)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if diff := cmp.Diff([]byte("frame one"), gotFirst); diff != "" {
		t.Fatalf("first frame mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("frame two"), gotSecond); diff != "" {
		t.Fatalf("second frame mismatch (-want +got):\n%s", diff)
	}
}

func TestBoxBytesRoundTrip(t *testing.T) {
	box := NewBox()
	roundTripped, err := BoxFromBytes(box.Bytes())
	if err != nil {
		t.Fatalf("BoxFromBytes: %v", err)
	}
	if diff := cmp.Diff(box, roundTripped); diff != "" {
		t.Fatalf("box mismatch (-want +got):\n%s", diff)
	}
}
