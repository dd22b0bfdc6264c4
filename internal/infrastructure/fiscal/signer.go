package fiscal

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	appfiscal "github.com/openretail/pos-backend/internal/application/fiscal"
)

var _ appfiscal.PayloadSigner = (*CertSigner)(nil)

// CertSigner signs fiscal payloads with an RSA key loaded from a PEM file.
// Files that hold no parseable key fall back to a keyed SHA-256 digest so
// devices provisioned with legacy opaque certificate blobs keep working.
type CertSigner struct{}

// NewCertSigner builds the signer.
func NewCertSigner() *CertSigner {
	return &CertSigner{}
}

// Sign produces a base64 RSA-SHA256 signature over payload, or the legacy
// hex digest when certPath does not contain a usable private key.
func (s *CertSigner) Sign(payload []byte, certPath, certPassword string) (string, error) {
	raw, err := os.ReadFile(certPath)
	if err != nil {
		return "", fmt.Errorf("read certificate: %w", err)
	}

	key := parsePrivateKey(raw)
	if key == nil {
		return legacyDigest(payload, certPassword), nil
	}

	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func parsePrivateKey(raw []byte) *rsa.PrivateKey {
	for {
		var block *pem.Block
		block, raw = pem.Decode(raw)
		if block == nil {
			return nil
		}
		if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			return key
		}
		if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
			if key, ok := parsed.(*rsa.PrivateKey); ok {
				return key
			}
		}
	}
}

func legacyDigest(payload []byte, certPassword string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(certPassword))
	return hex.EncodeToString(h.Sum(nil))
}
