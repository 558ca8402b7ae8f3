package ccavenue

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// The gateway kit prescribes a fixed IV for both directions.
var gatewayIV = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}

// Encrypt encrypts plain text with AES-128-CBC. The AES key is the MD5 digest
// of the shared working key, and the result is hex encoded, matching the
// gateway's official integration kit.
func Encrypt(plainText, workingKey string) (string, error) {
	if workingKey == "" {
		return "", fmt.Errorf("working key is empty")
	}
	key := md5.Sum([]byte(workingKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plainText), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, gatewayIV).CryptBlocks(encrypted, padded)

	return hex.EncodeToString(encrypted), nil
}

// Decrypt reverses Encrypt. It fails on malformed hex, a ciphertext that is
// not block aligned, or invalid padding, so a tampered callback payload can
// never decode into a well-formed response.
func Decrypt(cipherText, workingKey string) (string, error) {
	if workingKey == "" {
		return "", fmt.Errorf("working key is empty")
	}
	encrypted, err := hex.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("cipher text is not valid hex: %w", err)
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("cipher text length %d is not a multiple of the block size", len(encrypted))
	}

	key := md5.Sum([]byte(workingKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, gatewayIV).CryptBlocks(decrypted, encrypted)

	unpadded, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// pkcs7Pad pads data up to a multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad strips and verifies PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("invalid padding byte")
		}
	}
	return data[:len(data)-padLen], nil
}
