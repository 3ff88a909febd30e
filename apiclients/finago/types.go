package finago

// Canonical record types produced by the entity extractors. These are the
// normalized, typed representations of the wire records, independent of the
// XML shapes the services serialize.

// InvoiceStatus is the derived payment status of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid   InvoiceStatus = "Unpaid"
	InvoicePaid     InvoiceStatus = "Paid"
	InvoiceCredited InvoiceStatus = "Credited"
)

// Company is a CRM company record, the root of customer relationships.
type Company struct {
	CompanyID      int
	Name           string
	OrganizationNo string
	CustomerNumber string
	Email          string
	Phone          string
	DateChanged    string
}

// Person is a CRM contact. CompanyID is resolved from the person's relation
// list, falling back to the flat customer id field, and may be absent.
type Person struct {
	PersonID    int
	CompanyID   *int
	Name        string
	Email       string
	Phone       string
	Role        string
	DateChanged string
}

// Invoice is an outgoing invoice/order. Status, Balance and AmountPaid are
// derived from the Paid date and IsCredited flag rather than read from the
// wire (see deriveInvoiceState).
type Invoice struct {
	InvoiceID      int
	OrderID        int
	CustomerID     int
	CustomerName   string
	InvoiceNo      string
	InvoiceText    string
	DateInvoiced   string
	DateDue        string
	DatePaid       string
	DateChanged    string
	TotalIncVat    float64
	TotalVat       float64
	AmountPaid     float64
	Balance        float64
	CurrencySymbol string
	Status         InvoiceStatus
	ExternalStatus string
	IsCredited     bool
}

// Product is a product catalogue entry.
type Product struct {
	ProductID   int
	ProductNo   string
	Name        string
	Description string
	UnitPrice   float64
	CostPrice   float64
	IsActive    bool
	VatCode     string
	DateChanged string
}

// Transaction is one ledger line. The dimension references (customer,
// project, department) are extracted from the line's dimension list and are
// nil when absent or unparsable.
type Transaction struct {
	TransactionID string
	VoucherNo     *int
	LineNo        *int
	Date          string
	AccountNo     string
	Amount        float64
	Debit         float64
	Credit        float64
	Currency      string
	Description   string
	InvoiceNo     string
	LinkID        *int
	OCR           string
	CustomerID    *int
	ProjectID     *int
	DepartmentID  *int
}

// Account is a chart-of-accounts entry.
type Account struct {
	AccountNo      string
	Name           string
	AccountType    string
	IsActive       bool
	VatCode        string
	OpeningBalance float64
	ClosingBalance float64
}

// Identity is one selectable client identity returned by the
// authentication service.
type Identity struct {
	ID       string
	Name     string
	ClientID string
	UserName string
}
