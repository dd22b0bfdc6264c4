package fiscal

import (
	"context"

	"github.com/openretail/pos-backend/internal/application/dto"
)

// AuthorityClient delivers a fiscal invoice to the tax authority endpoint.
// Implementations must honor ctx and return an error for network failures,
// non-2xx responses and malformed bodies; a parsed {success:false} response is
// returned as a value, not an error.
type AuthorityClient interface {
	Submit(ctx context.Context, endpoint string, invoice *dto.FiscalInvoice) (*dto.AuthorityResponse, error)
}

// PayloadSigner signs the serialized fiscal payload with the configured
// certificate.
type PayloadSigner interface {
	Sign(payload []byte, certPath, certPassword string) (string, error)
}
