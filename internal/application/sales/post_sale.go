package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openretail/pos-backend/internal/application/dto"
	"github.com/openretail/pos-backend/internal/application/numbering"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/pkg/logger"
)

// PostSaleUseCase turns a cart into a durable sale: header, line items, stock
// decrements, ledger entries, loyalty points and outbox intents commit in one
// transaction. Invoice numbering and the fiscal/print side effects run after
// commit and degrade gracefully; the committed financial state stays
// consistent even when every post-commit step fails.
type PostSaleUseCase struct {
	txRunner  TxRunner
	ledger    Ledger
	issuer    InvoiceIssuer
	settings  settings.Provider
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	waker     Waker
	log       *logger.Logger
}

// NewPostSaleUseCase builds the use case. sales, customers and users are
// pool-bound repositories for work outside the transaction.
func NewPostSaleUseCase(
	txRunner TxRunner,
	ledger Ledger,
	issuer InvoiceIssuer,
	settingsProvider settings.Provider,
	sales repository.SaleRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	waker Waker,
	log *logger.Logger,
) *PostSaleUseCase {
	return &PostSaleUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		issuer:    issuer,
		settings:  settingsProvider,
		sales:     sales,
		customers: customers,
		users:     users,
		waker:     waker,
		log:       log,
	}
}

// loyaltyPoints is 1 point per 10 currency units, truncated.
func loyaltyPoints(total decimal.Decimal) int64 {
	return total.Div(decimal.NewFromInt(10)).IntPart()
}

// subtotalTolerance absorbs rounding between line totals and the subtotal.
var subtotalTolerance = decimal.New(1, -2)

// PostSale validates the request, executes the all-or-nothing checkout
// transaction and triggers the post-commit side effects.
func (uc *PostSaleUseCase) PostSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: sale must have at least one item", domain.ErrInvalidInput)
	}
	if in.PaymentMethod == "" || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrInvalidInput)
	}
	itemSum := decimal.Zero
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: item quantity must be positive", domain.ErrInvalidInput)
		}
		if item.UnitPrice.LessThan(decimal.Zero) || item.Discount.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: negative price or discount", domain.ErrInvalidInput)
		}
		itemSum = itemSum.Add(item.Total)
	}
	// Line totals and the submitted subtotal must agree to the cent.
	if itemSum.Sub(in.Subtotal).Abs().GreaterThan(subtotalTolerance) {
		return nil, fmt.Errorf("%w: item totals do not match subtotal", domain.ErrInvalidInput)
	}

	// Settings snapshot decides which outbox intents the transaction writes.
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerID:    in.CustomerID,
		UserID:        userID,
		Subtotal:      in.Subtotal,
		Tax:           in.Tax,
		Discount:      in.Discount,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		Status:        entity.SaleStatusCompleted,
		Notes:         in.Notes,
		CreatedAt:     now,
	}

	items := make([]*entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Total:       it.Total,
		})
	}

	err = uc.txRunner.RunSale(ctx, func(
		ctx context.Context,
		salesRepo repository.SaleRepository,
		products repository.ProductRepository,
		movements repository.InventoryMovementRepository,
		customers repository.CustomerRepository,
		outbox repository.OutboxRepository,
	) error {
		if err := salesRepo.Create(ctx, sale); err != nil {
			return err
		}
		reference := fmt.Sprintf("Sale %s", sale.ID)
		for _, item := range items {
			if err := salesRepo.CreateItem(ctx, item); err != nil {
				return err
			}
			if err := uc.ledger.ApplyOutInTx(ctx, movements, products, item.ProductID, item.Quantity, reference, userID, now); err != nil {
				return err
			}
		}
		if sale.CustomerID != "" {
			if err := customers.AddLoyaltyPoints(ctx, sale.CustomerID, loyaltyPoints(sale.Total)); err != nil {
				return err
			}
		}

		// Durable intents for the post-commit side effects (at-least-once).
		if st.FiscalEnabled() {
			if err := outbox.Create(ctx, newOutboxEntry(sale.ID, entity.OutboxKindFiscalSubmit, now)); err != nil {
				return err
			}
		}
		if st.AutoPrint() {
			if err := outbox.Create(ctx, newOutboxEntry(sale.ID, entity.OutboxKindPrintReceipt, now)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit: invoice number, best effort with timestamp fallback.
	invoiceNumber, err := uc.issuer.Next(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("invoice numbering failed, using fallback")
		invoiceNumber = numbering.Fallback(now)
	}
	if err := uc.sales.SetInvoiceNumber(ctx, sale.ID, invoiceNumber); err != nil {
		uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("persist invoice number")
	} else {
		sale.InvoiceNumber = invoiceNumber
	}

	uc.waker.Wake()

	return uc.toResponse(ctx, sale, items), nil
}

func newOutboxEntry(saleID, kind string, now time.Time) *entity.OutboxEntry {
	return &entity.OutboxEntry{
		ID:        uuid.New().String(),
		SaleID:    saleID,
		Kind:      kind,
		Status:    entity.OutboxStatusPending,
		CreatedAt: now,
	}
}

func (uc *PostSaleUseCase) toResponse(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		CustomerID:    sale.CustomerID,
		UserID:        sale.UserID,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		InvoiceNumber: sale.InvoiceNumber,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Total:       item.Total,
		})
	}
	// Names are display data; lookups are best effort.
	if sale.CustomerID != "" {
		if customer, err := uc.customers.GetByID(ctx, sale.CustomerID); err == nil && customer != nil {
			resp.CustomerName = customer.Name
		}
	}
	if user, err := uc.users.GetByID(ctx, sale.UserID); err == nil && user != nil {
		resp.CashierName = user.FullName
	}
	return resp
}
