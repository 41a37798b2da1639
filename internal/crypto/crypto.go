// Package crypto melindungi kredensial akun at-rest (AES-256-CBC).
// Format ciphertext: hex(iv) + ":" + hex(encrypted), kompatibel dengan data lama.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

const keyLen = 32

var ErrBadKey = errors.New("encryption key must be 32 bytes")

type Box struct {
	key []byte
}

// New menerima key dari env. Key kosong/salah ukuran -> Box pass-through
// (data disimpan apa adanya): import stock tidak boleh gagal hanya karena
// key belum diset di environment.
func New(key string) *Box {
	if len(key) != keyLen {
		return &Box{}
	}
	return &Box{key: []byte(key)}
}

func (b *Box) Enabled() bool { return b.key != nil }

func (b *Box) Encrypt(plain string) (string, error) {
	if !b.Enabled() {
		return plain, nil
	}
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	padded := pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt toleran: input tanpa separator dianggap plaintext lama dan
// dikembalikan apa adanya.
func (b *Box) Decrypt(stored string) (string, error) {
	if !b.Enabled() {
		return stored, nil
	}
	ivHex, ctHex, found := strings.Cut(stored, ":")
	if !found {
		return stored, nil
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return stored, nil
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errors.New("malformed ciphertext")
	}
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	return string(unpad(out)), nil
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	n := int(b[len(b)-1])
	if n == 0 || n > len(b) {
		return b
	}
	return b[:len(b)-n]
}
