package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher := NewCipher("some-passphrase")

	sealed, err := cipher.Encrypt("ya29.secret-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, "ya29.secret-access-token", sealed)

	plain, err := cipher.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.secret-access-token", plain)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	sealed, err := Encrypt("secret", "key-one")
	require.NoError(t, err)

	_, err = Decrypt(sealed, "key-two")
	assert.Error(t, err)
}

func TestEmptyKeyIsPassthrough(t *testing.T) {
	cipher := NewCipher("")

	sealed, err := cipher.Encrypt("plaintext")
	require.NoError(t, err)
	assert.Equal(t, "plaintext", sealed)
}

func TestDecryptGarbageFails(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", "key")
	assert.Error(t, err)
}
