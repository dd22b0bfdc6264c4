package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openretail/pos-backend/internal/application/dto"
	appfiscal "github.com/openretail/pos-backend/internal/application/fiscal"
)

var _ appfiscal.AuthorityClient = (*HTTPClient)(nil)

// HTTPClient posts fiscal invoices to the tax authority over HTTPS.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient builds the authority client. timeout bounds the whole
// request; zero means 30s.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Submit POSTs the invoice as JSON and decodes the authority response. A
// parsed {success:false} body is returned as a value; transport errors,
// non-2xx statuses and undecodable bodies are errors.
func (c *HTTPClient) Submit(ctx context.Context, endpoint string, invoice *dto.FiscalInvoice) (*dto.AuthorityResponse, error) {
	body, err := json.Marshal(invoice)
	if err != nil {
		return nil, fmt.Errorf("marshal fiscal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fiscal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "POS-System/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit fiscal invoice: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read authority response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("authority returned status %d: %s", resp.StatusCode, raw)
	}

	var out dto.AuthorityResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode authority response: %w", err)
	}
	return &out, nil
}
