package fiscal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/pkg/logger"
)

// SubmissionUseCase reports completed sales to the external tax authority.
// Every attempt leaves a durable FiscalRecord; the most recent row is the
// sale's current fiscal status. Failures never propagate to the checkout
// caller — the outbox dispatcher and the retry sweep own this path.
type SubmissionUseCase struct {
	records  repository.FiscalRecordRepository
	sales    repository.SaleRepository
	settings settings.Provider
	client   AuthorityClient
	signer   PayloadSigner
	log      *logger.Logger
}

// NewSubmissionUseCase builds the use case.
func NewSubmissionUseCase(
	records repository.FiscalRecordRepository,
	sales repository.SaleRepository,
	settingsProvider settings.Provider,
	client AuthorityClient,
	signer PayloadSigner,
	log *logger.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		records:  records,
		sales:    sales,
		settings: settingsProvider,
		client:   client,
		signer:   signer,
		log:      log,
	}
}

// SubmitSale submits the sale's invoice to the authority and stores the
// outcome as a new FiscalRecord. With fiscal integration disabled it is a
// no-op success: no external call, no record write.
func (uc *SubmissionUseCase) SubmitSale(ctx context.Context, saleID string) (*dto.AuthorityResponse, error) {
	resp, _, err := uc.submit(ctx, saleID)
	return resp, err
}

// Deliver is the outbox entry point. A rejection that was stored as a failed
// record counts as delivered: the retry sweep owns further attempts, so the
// dispatcher must not redeliver it. Errors propagate only when nothing
// durable was written.
func (uc *SubmissionUseCase) Deliver(ctx context.Context, saleID string) error {
	_, recorded, err := uc.submit(ctx, saleID)
	if err != nil && recorded {
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("fiscal submission failed, record stored")
		return nil
	}
	return err
}

// submit runs one submission. recorded reports whether a failed FiscalRecord
// was durably written for the returned error.
func (uc *SubmissionUseCase) submit(ctx context.Context, saleID string) (resp *dto.AuthorityResponse, recorded bool, err error) {
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load settings: %w", err)
	}
	if !st.FiscalEnabled() {
		return &dto.AuthorityResponse{Success: true, Message: "fiscal integration disabled"}, false, nil
	}

	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, false, err
	}
	if sale == nil {
		return nil, false, domain.ErrNotFound
	}
	items, err := uc.sales.GetItems(ctx, saleID)
	if err != nil {
		return nil, false, err
	}

	resp, signature, attemptErr := uc.attempt(ctx, sale, items, st)
	record := &entity.FiscalRecord{
		ID:          uuid.New().String(),
		SaleID:      saleID,
		Signature:   signature,
		SubmittedAt: time.Now(),
	}
	if attemptErr != nil {
		record.Status = entity.FiscalStatusFailed
		record.ErrorMessage = attemptErr.Error()
		if err := uc.records.Create(ctx, record); err != nil {
			uc.log.Error().Err(err).Str("sale_id", saleID).Msg("store failed fiscal record")
			return nil, false, attemptErr
		}
		return nil, true, attemptErr
	}

	record.Status = entity.FiscalStatusSubmitted
	record.FiscalID = resp.FiscalID
	record.QRCode = resp.QRCode
	record.VerificationURL = resp.VerificationURL
	if err := uc.records.Create(ctx, record); err != nil {
		uc.log.Error().Err(err).Str("sale_id", saleID).Msg("store fiscal record")
	}
	return resp, false, nil
}

// attempt builds, optionally signs and delivers the payload. Returns the
// authority response, the signature used (may be empty) and the first error.
func (uc *SubmissionUseCase) attempt(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem, st settings.Settings) (*dto.AuthorityResponse, string, error) {
	invoice := buildPayload(sale, items, st)

	var signature string
	if st.FiscalCertPath() != "" {
		raw, err := json.Marshal(invoice)
		if err != nil {
			return nil, "", fmt.Errorf("marshal fiscal payload: %w", err)
		}
		signature, err = uc.signer.Sign(raw, st.FiscalCertPath(), st.FiscalCertPassword())
		if err != nil {
			return nil, "", fmt.Errorf("certificate signing failed: %w", err)
		}
		invoice.Signature = signature
	}

	resp, err := uc.client.Submit(ctx, st.FiscalAPIEndpoint(), invoice)
	if err != nil {
		return nil, signature, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "fiscal submission rejected"
		}
		return nil, signature, fmt.Errorf("%s", msg)
	}
	return resp, signature, nil
}

func buildPayload(sale *entity.Sale, items []*entity.SaleItem, st settings.Settings) *dto.FiscalInvoice {
	invoice := &dto.FiscalInvoice{
		InvoiceNumber:         sale.InvoiceNumber,
		Date:                  sale.CreatedAt.Format(time.RFC3339),
		CompanyID:             st.FiscalCompanyID(),
		DeviceID:              st.FiscalDeviceID(),
		Items:                 make([]dto.FiscalInvoiceItem, 0, len(items)),
		Subtotal:              sale.Subtotal,
		Tax:                   sale.Tax,
		Total:                 sale.Total,
		PaymentMethod:         sale.PaymentMethod,
		TaxRegistrationNumber: st.TaxRegistrationNumber(),
		VATNumber:             st.VATNumber(),
	}
	if invoice.InvoiceNumber == "" {
		invoice.InvoiceNumber = sale.ID
	}
	taxRate := st.TaxRate()
	for _, item := range items {
		invoice.Items = append(invoice.Items, dto.FiscalInvoiceItem{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   taxRate,
			Total:     item.Total,
		})
	}
	return invoice
}

// Status returns the current fiscal state of a sale: the latest record, or
// not_submitted when no attempt has been stored yet.
func (uc *SubmissionUseCase) Status(ctx context.Context, saleID string) (*dto.FiscalStatusResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	record, err := uc.records.GetLatestBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &dto.FiscalStatusResponse{SaleID: saleID, Status: entity.FiscalStatusNotSubmitted}, nil
	}
	return &dto.FiscalStatusResponse{
		SaleID:       saleID,
		Status:       record.Status,
		FiscalID:     record.FiscalID,
		RetryCount:   record.RetryCount,
		ErrorMessage: record.ErrorMessage,
	}, nil
}

// Report summarizes fiscal records for sales created in [start, end].
func (uc *SubmissionUseCase) Report(ctx context.Context, start, end time.Time) (*dto.FiscalReportResponse, error) {
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	records, err := uc.records.ListByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	maxRetries := st.FiscalRetryAttempts()
	out := &dto.FiscalReportResponse{
		Records: make([]dto.FiscalReportRecord, 0, len(records)),
	}
	for _, r := range records {
		out.Records = append(out.Records, dto.FiscalReportRecord{
			SaleID:      r.SaleID,
			Status:      r.Status,
			FiscalID:    r.FiscalID,
			RetryCount:  r.RetryCount,
			SubmittedAt: r.SubmittedAt,
		})
		out.Summary.TotalRecords++
		switch r.Status {
		case entity.FiscalStatusSubmitted:
			out.Summary.Submitted++
		case entity.FiscalStatusFailed:
			out.Summary.Failed++
			if r.RetryCount < maxRetries {
				out.Summary.PendingRetry++
			}
		}
	}
	return out, nil
}
