package fiscal

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestSignWithRSAKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	certPath := writeTempFile(t, "cert.pem", pemBytes)

	payload := []byte(`{"invoice_number":"INV-001000"}`)
	signer := NewCertSigner()
	sig, err := signer.Sign(payload, certPath, "")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	digest := sha256.Sum256(payload)
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], raw))
}

func TestSignWithPKCS8Key(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	certPath := writeTempFile(t, "cert.pem", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	sig, err := NewCertSigner().Sign([]byte("payload"), certPath, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

// Opaque certificate blobs fall back to the keyed digest, deterministically.
func TestSignLegacyFallback(t *testing.T) {
	certPath := writeTempFile(t, "cert.bin", []byte("not a PEM file"))

	signer := NewCertSigner()
	first, err := signer.Sign([]byte("payload"), certPath, "secret")
	require.NoError(t, err)
	second, err := signer.Sign([]byte("payload"), certPath, "secret")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "hex SHA-256")

	other, err := signer.Sign([]byte("payload"), certPath, "other-password")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSignMissingFile(t *testing.T) {
	_, err := NewCertSigner().Sign([]byte("payload"), "/nonexistent/cert.pem", "")
	assert.Error(t, err)
}
