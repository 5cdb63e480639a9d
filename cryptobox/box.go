package cryptobox

import "fmt"

// Box bundles the AES-256 session key and IV established during the rsa
// stage and reused for every subsequent frame on a connection (see
// §4.2/§9 on IV reuse). It mirrors the teacher's RLPxTransport pattern of
// carrying the derived cipher material on a small struct rather than
// re-deriving it per call -- adapted here for a reused-IV stream cipher
// instead of per-message nonces.
type Box struct {
	Key []byte
	IV  []byte
}

// NewBox generates a fresh session key and IV.
func NewBox() Box {
	return Box{Key: SessionKey(), IV: SessionIV()}
}

// Seal encrypts plaintext under the box's key and IV.
func (b Box) Seal(plaintext []byte) ([]byte, error) {
	return Encrypt(b.Key, b.IV, plaintext)
}

// Open decrypts ciphertext under the box's key and IV.
func (b Box) Open(ciphertext []byte) ([]byte, error) {
	return Decrypt(b.Key, b.IV, ciphertext)
}

// Bytes concatenates IV then Key, the exact plaintext layout
// RSA-OAEP-wrapped during the rsa handshake stage (§6: "iv‖key").
func (b Box) Bytes() []byte {
	out := make([]byte, 0, len(b.IV)+len(b.Key))
	out = append(out, b.IV...)
	out = append(out, b.Key...)
	return out
}

// BoxFromBytes splits a decrypted iv‖key plaintext (48 bytes: 16 IV +
// 32 key) back into a Box.
func BoxFromBytes(data []byte) (Box, error) {
	if len(data) != IVSize+KeySize {
		return Box{}, fmt.Errorf("cryptobox: iv||key plaintext is %d bytes, want %d", len(data), IVSize+KeySize)
	}
	iv := make([]byte, IVSize)
	key := make([]byte, KeySize)
	copy(iv, data[:IVSize])
	copy(key, data[IVSize:])
	return Box{Key: key, IV: iv}, nil
}
