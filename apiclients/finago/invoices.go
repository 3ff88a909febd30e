package finago

import (
	"context"
	"fmt"
)

// invoiceReturnProps are the invoice properties requested from the invoice
// service. Paid and IsCredited drive the status derivation below.
var invoiceReturnProps = []string{
	"InvoiceId",
	"OrderId",
	"CustomerId",
	"CustomerName",
	"InvoiceNumber",
	"DateInvoiced",
	"DateDue",
	"DateChanged",
	"Paid",
	"IsCredited",
	"OrderTotalIncVat",
	"OrderTotalVat",
	"Currency",
	"OrderStatus",
	"ExternalStatus",
}

// rowReturnProps are required by the GetInvoices operation even though the
// row detail is not persisted.
var rowReturnProps = []string{
	"ProductId",
	"RowId",
	"Name",
	"Quantity",
	"Price",
}

// GetInvoices fetches outgoing invoices/orders changed on or after
// changedAfter via the invoice service's GetInvoices operation and extracts
// them into canonical records with derived payment state.
func (c *Client) GetInvoices(ctx context.Context, changedAfter string) ([]Invoice, error) {
	ds := NormalizeChangedAfter(changedAfter)

	inner := fmt.Sprintf(`<GetInvoices xmlns="%s">
  <searchParams><ChangedAfter>%s</ChangedAfter></searchParams>
  <invoiceReturnProperties>%s</invoiceReturnProperties>
  <rowReturnProperties>%s</rowReturnProperties>
</GetInvoices>`, c.ns, ds, xmlStrings(invoiceReturnProps), xmlStrings(rowReturnProps))

	doc, err := c.Call(ctx, "GetInvoices", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetInvoicesResponse", "GetInvoicesResult")

	// The WSDL names the repeated element InvoiceOrder; older service
	// versions used Invoice.
	items := ListOf(result, "InvoiceOrder")
	if len(items) == 0 {
		items = ListOf(result, "Invoice")
	}

	var invoices []Invoice
	for _, item := range items {
		invoice := extractInvoice(item)
		// Rows without a usable primary key are broken; drop them before
		// persistence.
		if invoice.InvoiceID == 0 {
			continue
		}
		invoices = append(invoices, invoice)
	}

	c.log.Info(fmt.Sprintf("GetInvoices: retrieved %d invoices", len(invoices)))
	return invoices, nil
}

// extractInvoice maps one wire invoice record to its canonical form.
func extractInvoice(item Node) Invoice {
	invoiceID := IntOf(item, "InvoiceId")

	invoice := Invoice{
		InvoiceID:      invoiceID,
		OrderID:        IntOf(item, "OrderId"),
		CustomerID:     IntOf(item, "CustomerId"),
		CustomerName:   StringOf(item, "CustomerName"),
		InvoiceNo:      FirstString(item, "InvoiceNumber", "InvoiceNo", "InvoiceId"),
		InvoiceText:    FirstString(item, "Text", "Description"),
		DateInvoiced:   FirstString(item, "DateInvoiced", "InvoiceDate"),
		DateDue:        FirstString(item, "DateDue", "DueDate"),
		DatePaid:       StringOf(item, "Paid"),
		DateChanged:    StringOf(item, "DateChanged"),
		TotalIncVat:    FloatOf(item, "OrderTotalIncVat"),
		TotalVat:       FloatOf(item, "OrderTotalVat"),
		CurrencySymbol: StringOf(NodeOf(item, "Currency"), "Symbol"),
		ExternalStatus: StringOf(item, "ExternalStatus"),
		IsCredited:     BoolOf(item, "IsCredited"),
	}
	if invoice.TotalIncVat == 0 {
		invoice.TotalIncVat = FloatOf(item, "TotalIncVat")
	}
	if invoice.TotalVat == 0 {
		invoice.TotalVat = FloatOf(item, "TotalVat")
	}

	invoice.Status, invoice.Balance, invoice.AmountPaid = deriveInvoiceState(
		invoice.IsCredited, invoice.DatePaid, invoice.TotalIncVat,
	)
	return invoice
}

// deriveInvoiceState derives the canonical payment state from the raw Paid
// date and IsCredited flag, in strict precedence order: a credited invoice
// is Credited with zero balance and nothing paid; an invoice with a Paid
// date is Paid in full; anything else is Unpaid with the full total
// outstanding.
func deriveInvoiceState(isCredited bool, paidDate string, total float64) (InvoiceStatus, float64, float64) {
	switch {
	case isCredited:
		return InvoiceCredited, 0, 0
	case paidDate != "":
		return InvoicePaid, 0, total
	default:
		return InvoiceUnpaid, total, 0
	}
}
