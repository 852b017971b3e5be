// Package printout renders print-ready HTML fragments for documents. The
// fragments carry no page chrome; the client embeds them in its print view.
package printout

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/waybills"
)

// Renderer formats documents with Turkish number conventions.
type Renderer struct {
	printer *message.Printer
	invoice *template.Template
	waybill *template.Template
}

func NewRenderer() *Renderer {
	r := &Renderer{printer: message.NewPrinter(language.Turkish)}
	funcs := template.FuncMap{
		"money": r.Money,
		"date":  formatDate,
	}
	r.invoice = template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate))
	r.waybill = template.Must(template.New("waybill").Funcs(funcs).Parse(waybillTemplate))
	return r
}

// Money renders an amount with grouping and two decimals, e.g. "1.234,50".
func (r *Renderer) Money(v float64) string {
	return r.printer.Sprintf("%.2f", v)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// RenderInvoice returns the print fragment for an invoice.
func (r *Renderer) RenderInvoice(inv *invoices.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.invoice.Execute(&buf, inv); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

// RenderWaybill returns the print fragment for a waybill.
func (r *Renderer) RenderWaybill(wb *waybills.Waybill) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.waybill.Execute(&buf, wb); err != nil {
		return nil, fmt.Errorf("render waybill %s: %w", wb.Number, err)
	}
	return buf.Bytes(), nil
}

const invoiceTemplate = `<article class="document invoice">
  <header>
    <h1>{{if eq .Type "SALES"}}Satış Faturası{{else}}Alış Faturası{{end}}</h1>
    <dl>
      <dt>Fatura No</dt><dd>{{.Number}}</dd>
      <dt>Tarih</dt><dd>{{date .InvoiceDate}}</dd>
      {{with .DueDate}}<dt>Vade</dt><dd>{{date .}}</dd>{{end}}
      <dt>Cari</dt><dd>{{.PartnerName}}</dd>
    </dl>
  </header>
  <table>
    <thead>
      <tr><th>Ürün</th><th>Miktar</th><th>Birim Fiyat</th><th>KDV %</th><th>Tutar</th></tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.ProductName}}</td>
        <td>{{.Quantity}}</td>
        <td>{{money .UnitPrice}}</td>
        <td>{{printf "%.0f" .TaxRate}}</td>
        <td>{{money .LineTotal}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="4">Ara Toplam</td><td>{{money .SubTotal}}</td></tr>
      <tr><td colspan="4">KDV</td><td>{{money .TaxTotal}}</td></tr>
      <tr><td colspan="4">Genel Toplam</td><td>{{money .TotalAmount}}</td></tr>
    </tfoot>
  </table>
  {{with .Notes}}<footer><p>{{.}}</p></footer>{{end}}
</article>
`

const waybillTemplate = `<article class="document waybill">
  <header>
    <h1>{{if eq .Type "OUTGOING"}}Sevk İrsaliyesi{{else}}Giriş İrsaliyesi{{end}}</h1>
    <dl>
      <dt>İrsaliye No</dt><dd>{{.Number}}</dd>
      <dt>Tarih</dt><dd>{{date .WaybillDate}}</dd>
      <dt>Durum</dt><dd>{{.Status}}</dd>
      <dt>Cari</dt><dd>{{.PartnerName}}</dd>
    </dl>
  </header>
  <table>
    <thead>
      <tr><th>Ürün</th><th>Miktar</th><th>Birim</th><th>Açıklama</th></tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.ProductName}}</td>
        <td>{{.Quantity}}</td>
        <td>{{.Unit}}</td>
        <td>{{.Description}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  {{with .Notes}}<footer><p>{{.}}</p></footer>{{end}}
</article>
`
