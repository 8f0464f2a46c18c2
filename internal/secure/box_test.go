package secure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBox(t *testing.T) *MessageBox {
	t.Helper()
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := NewMessageBox(pub, priv)
	require.NoError(t, err)
	return b
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	b := newTestBox(t)

	bodies := []string{
		"hello",
		"",
		"héllo wörld 你好",
		strings.Repeat("a", 4096),
	}
	for _, body := range bodies {
		ct, err := b.Encrypt(body)
		require.NoError(t, err)
		require.NotEqual(t, body, ct)

		pt, err := b.Decrypt(ct)
		require.NoError(t, err)
		require.Equal(t, body, pt)
	}
}

func TestEncryptIsNotDeterministic(t *testing.T) {
	b := newTestBox(t)

	first, err := b.Encrypt("same body")
	require.NoError(t, err)
	second, err := b.Encrypt("same body")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	b := newTestBox(t)

	_, err := b.Decrypt("not base64 at all %%%")
	require.Error(t, err)

	_, err = b.Decrypt("aGVsbG8=")
	require.Error(t, err)
}

func TestDecryptRejectsForeignKeyPair(t *testing.T) {
	b := newTestBox(t)
	other := newTestBox(t)

	ct, err := b.Encrypt("secret")
	require.NoError(t, err)

	_, err = other.Decrypt(ct)
	require.Error(t, err)
}

func TestNewMessageBoxRejectsBadKeys(t *testing.T) {
	_, err := NewMessageBox("zz", "zz")
	require.Error(t, err)

	pub, _, genErr := GenerateKeyPair()
	require.NoError(t, genErr)
	_, err = NewMessageBox(pub, "abcd")
	require.Error(t, err)
}
