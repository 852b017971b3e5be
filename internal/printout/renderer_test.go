package printout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/waybills"
)

func TestMoneyFormatting(t *testing.T) {
	r := NewRenderer()
	require.Equal(t, "1.234,50", r.Money(1234.5))
	require.Equal(t, "0,00", r.Money(0))
	require.Equal(t, "360,00", r.Money(360))
}

func TestRenderInvoice(t *testing.T) {
	r := NewRenderer()
	due := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	inv := &invoices.Invoice{
		Number:      "FAT-2026-0007",
		Type:        invoices.InvoiceTypeSales,
		PartnerName: "Acme Klinik",
		InvoiceDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:     &due,
		SubTotal:    300,
		TaxTotal:    60,
		TotalAmount: 360,
		Items: []invoices.InvoiceItem{
			{ProductName: "Steril gazlı bez", Quantity: 3, UnitPrice: 100, TaxRate: 20, LineTotal: 300, LineTax: 60},
		},
	}

	out, err := r.RenderInvoice(inv)
	require.NoError(t, err)
	html := string(out)

	require.Contains(t, html, "FAT-2026-0007")
	require.Contains(t, html, "Satış Faturası")
	require.Contains(t, html, "Acme Klinik")
	require.Contains(t, html, "05.03.2026")
	require.Contains(t, html, "360,00")
	require.Contains(t, html, "Steril gazlı bez")
}

func TestRenderPurchaseInvoiceTitle(t *testing.T) {
	r := NewRenderer()
	inv := &invoices.Invoice{
		Number:      "FAT-2026-0008",
		Type:        invoices.InvoiceTypePurchase,
		InvoiceDate: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
	}
	out, err := r.RenderInvoice(inv)
	require.NoError(t, err)
	require.Contains(t, string(out), "Alış Faturası")
}

func TestRenderWaybill(t *testing.T) {
	r := NewRenderer()
	wb := &waybills.Waybill{
		Number:      "IRS-2026-0003",
		Type:        waybills.WaybillTypeOutgoing,
		Status:      waybills.WaybillStatusSent,
		PartnerName: "Acme Klinik",
		WaybillDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Items: []waybills.WaybillItem{
			{ProductName: "Muayene eldiveni", Quantity: 40, Unit: "kutu"},
		},
	}

	out, err := r.RenderWaybill(wb)
	require.NoError(t, err)
	html := string(out)

	require.Contains(t, html, "IRS-2026-0003")
	require.Contains(t, html, "Sevk İrsaliyesi")
	require.Contains(t, html, "Muayene eldiveni")
	require.Contains(t, html, "kutu")
}

func TestRenderEscapesNotes(t *testing.T) {
	r := NewRenderer()
	inv := &invoices.Invoice{
		Number:      "FAT-2026-0009",
		Type:        invoices.InvoiceTypeSales,
		InvoiceDate: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		Notes:       `<script>alert("x")</script>`,
	}
	out, err := r.RenderInvoice(inv)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}
