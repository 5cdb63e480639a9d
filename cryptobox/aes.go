package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"lukechampine.com/frand"
)

// KeySize is the AES-256 session key size in bytes.
const KeySize = 32

// IVSize is the AES block size used as the CFB initialization vector.
const IVSize = 16

// SessionKey generates a fresh 32-byte AES-256 key.
func SessionKey() []byte {
	return frand.Bytes(KeySize)
}

// SessionIV generates a fresh 16-byte CFB initialization vector.
//
// The same IV is reused for every frame of a session (see §4.2/§9): this
// is a known weakness of the original design, preserved here for wire
// compatibility rather than fixed silently.
func SessionIV() []byte {
	return frand.Bytes(IVSize)
}

// Encrypt AES-CFB-encrypts plaintext with key and iv. Output length
// equals input length; no padding is applied.
func Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: aes cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("cryptobox: iv length %d, want %d", len(iv), block.BlockSize())
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(ciphertext, plaintext)
	return ciphertext, nil
}

// Decrypt AES-CFB-decrypts ciphertext with key and iv.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: aes cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("cryptobox: iv length %d, want %d", len(iv), block.BlockSize())
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
