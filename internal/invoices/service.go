package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/medika-erp/medika-erp/internal/inventory"
	"github.com/medika-erp/medika-erp/internal/partners"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, validate: validator.New(), audit: audit, logger: logger}
}

// Create posts an invoice. Everything a posting touches commits in one
// transaction: the numbered header with its items, one ledger entry, the
// partner balance delta, and per item a locked stock update plus a stock
// movement. A failure at any point leaves no trace of the posting.
//
// A sales posting debits the partner (balance +total) and decrements stock.
// A purchase posting credits the partner (balance -total) and increments
// stock. Postings may drive stock negative; only manual adjustments guard
// against that.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	inv := Invoice{
		Type:        req.Type,
		PartnerID:   req.PartnerID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	}
	if actor := shared.ActorID(ctx); actor > 0 {
		inv.CreatedBy = &actor
	}
	for _, item := range req.Items {
		lineTotal, lineTax := LineTotals(item.Quantity, item.UnitPrice, item.TaxRate)
		inv.SubTotal += lineTotal
		inv.TaxTotal += lineTax
		inv.Items = append(inv.Items, InvoiceItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			LineTotal: lineTotal,
			LineTax:   lineTax,
		})
	}
	inv.TotalAmount = inv.SubTotal + inv.TaxTotal

	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, inv.InvoiceDate)
		if err != nil {
			return err
		}
		inv.Number = number

		if err := repo.Insert(ctx, &inv); err != nil {
			return err
		}
		invoiceID = inv.ID

		entry := partners.LedgerEntry{
			PartnerID:   inv.PartnerID,
			EntryDate:   inv.InvoiceDate,
			Description: fmt.Sprintf("Invoice %s", inv.Number),
			Amount:      inv.TotalAmount,
			InvoiceID:   &invoiceID,
		}
		balanceDelta := inv.TotalAmount
		if inv.Type == InvoiceTypeSales {
			entry.Type = partners.EntryTypeDebit
		} else {
			entry.Type = partners.EntryTypeCredit
			balanceDelta = -inv.TotalAmount
		}
		if err := repo.InsertLedgerEntry(ctx, &entry); err != nil {
			return err
		}
		if err := repo.AdjustPartnerBalance(ctx, inv.PartnerID, balanceDelta); err != nil {
			return err
		}

		for _, item := range inv.Items {
			name, oldStock, err := repo.LockProductStock(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			movement := inventory.Movement{
				Ref:       uuid.NewString(),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				OldStock:  oldStock,
			}
			if inv.Type == InvoiceTypeSales {
				movement.Type = inventory.MovementTypeSale
				movement.NewStock = oldStock - item.Quantity
			} else {
				movement.Type = inventory.MovementTypePurchase
				movement.NewStock = oldStock + item.Quantity
			}
			movement.Description = fmt.Sprintf("Invoice %s: %s", inv.Number, name)
			movement.CreatedBy = inv.CreatedBy

			if err := repo.UpdateProductStock(ctx, item.ProductID, movement.NewStock); err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if err := repo.InsertMovement(ctx, &movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		log := shared.AuditLog{
			Action:   "invoice.posted",
			Entity:   "invoice",
			EntityID: strconv.FormatInt(invoiceID, 10),
			Meta:     map[string]any{"number": inv.Number, "type": inv.Type, "total": inv.TotalAmount},
		}
		if inv.CreatedBy != nil {
			log.ActorID = *inv.CreatedBy
		}
		if err := s.audit.Record(ctx, log); err != nil {
			s.logger.Warn("audit invoice posting", slog.Any("error", err))
		}
	}

	return s.repo.GetByID(ctx, invoiceID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Invoice, int64, error) {
	return s.repo.List(ctx, f)
}
