// Package cryptobox implements the asymmetric and symmetric primitives
// used during the handshake and online session traffic: RSA-2048/OAEP
// key transport and AES-256/CFB stream encryption. Randomness is drawn
// from lukechampine.com/frand rather than crypto/rand -- the pack's own
// idiom (see educationofjon-core/rhp/v2/transport.go) for seeding stdlib
// crypto APIs that accept an io.Reader.
package cryptobox

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"lukechampine.com/frand"
)

// RSAKeyBits is the modulus size mandated for session-key transport.
const RSAKeyBits = 2048

// GenerateKeyPair produces a fresh RSA-2048 private key with the
// standard public exponent 65537 (crypto/rsa's default for GenerateKey).
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(frand.Reader, RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: generate rsa key: %w", err)
	}
	return key, nil
}

// MarshalPublicKey serializes pub in DER SubjectPublicKeyInfo form, the
// exact wire representation sent as the first handshake frame.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: marshal public key: %w", err)
	}
	return der, nil
}

// ParsePublicKey decodes a DER SubjectPublicKeyInfo blob into an RSA
// public key, as received over the wire in the first handshake frame.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("cryptobox: parsed public key is %T, not RSA", pub)
	}
	return rsaPub, nil
}

// Encrypt wraps plaintext for pub using OAEP with MGF1/SHA-256 and no
// label, per §4.2.
func Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), frand.Reader, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: rsa encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt unwraps ciphertext produced by Encrypt.
func Decrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	pt, err := rsa.DecryptOAEP(sha256.New(), frand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: rsa decrypt: %w", err)
	}
	return pt, nil
}
