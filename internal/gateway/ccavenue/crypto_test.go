package ccavenue_test

import (
	"encoding/hex"
	"testing"

	"gorent/internal/gateway/ccavenue"

	"github.com/stretchr/testify/assert"
)

const testWorkingKey = "4D8E1B2C3F5A697B8C9D0E1F2A3B4C5D"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := "merchant_id=12345&order_id=RENT1ABCD&amount=1200.00&currency=INR&"

	encrypted, err := ccavenue.Encrypt(plain, testWorkingKey)
	assert.NoError(t, err)
	assert.NotEmpty(t, encrypted)
	// Output must be hex so it survives the gateway's form post untouched.
	_, err = hex.DecodeString(encrypted)
	assert.NoError(t, err)

	decrypted, err := ccavenue.Decrypt(encrypted, testWorkingKey)
	assert.NoError(t, err)
	assert.Equal(t, plain, decrypted)
}

func TestEncryptEmptyWorkingKey(t *testing.T) {
	_, err := ccavenue.Encrypt("order_id=1&", "")
	assert.Error(t, err)
}

func TestDecryptTamperedPayload(t *testing.T) {
	encrypted, err := ccavenue.Encrypt("order_id=RENT1&order_status=Success&", testWorkingKey)
	assert.NoError(t, err)

	// Flip a character in the last block so padding verification fails.
	tampered := []byte(encrypted)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}
	_, err = ccavenue.Decrypt(string(tampered), testWorkingKey)
	assert.Error(t, err)
}

func TestDecryptGarbageInput(t *testing.T) {
	// Not hex at all.
	_, err := ccavenue.Decrypt("not-a-hex-payload", testWorkingKey)
	assert.Error(t, err)

	// Valid hex but not block aligned.
	_, err = ccavenue.Decrypt("deadbeef", testWorkingKey)
	assert.Error(t, err)

	// Empty payload.
	_, err = ccavenue.Decrypt("", testWorkingKey)
	assert.Error(t, err)
}

func TestDecryptWrongWorkingKey(t *testing.T) {
	encrypted, err := ccavenue.Encrypt("order_id=RENT1&order_status=Success&", testWorkingKey)
	assert.NoError(t, err)

	decrypted, err := ccavenue.Decrypt(encrypted, "0000000000000000000000000000000A")
	if err == nil {
		// Padding can occasionally survive a wrong key, but the plaintext
		// must not match the original.
		assert.NotEqual(t, "order_id=RENT1&order_status=Success&", decrypted)
	}
}
