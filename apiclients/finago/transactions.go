package finago

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GetTransactions fetches ledger lines via the accounting service's
// GetTransactions operation. The service searches a date window rather than
// a change filter, so the window runs from the changed-after date at the
// start of day through the end of today.
func (c *Client) GetTransactions(ctx context.Context, changedAfter string) ([]Transaction, error) {
	ds := strings.SplitN(changedAfter, "T", 2)[0] + "T00:00:00"
	de := time.Now().UTC().Format("2006-01-02") + "T23:59:59"

	inner := fmt.Sprintf(`<GetTransactions xmlns="%s/">
  <searchParams>
    <DateStart>%s</DateStart>
    <DateEnd>%s</DateEnd>
  </searchParams>
</GetTransactions>`, c.ns, ds, de)

	doc, err := c.Call(ctx, "GetTransactions", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetTransactionsResponse", "GetTransactionsResult")

	var transactions []Transaction
	for _, item := range ListOf(result, "Transaction") {
		customerID, projectID, departmentID := extractDimensions(item)
		transaction := Transaction{
			TransactionID: StringOf(item, "Id"),
			VoucherNo:     IntRefOf(item, "TransactionNo"),
			LineNo:        IntRefOf(item, "SequenceNo"),
			Date:          StringOf(item, "Date"),
			AccountNo:     StringOf(item, "AccountNo"),
			Amount:        FloatOf(item, "Amount"),
			Debit:         FloatOf(item, "Debit"),
			Credit:        FloatOf(item, "Credit"),
			Currency:      StringOf(item, "Currency"),
			Description:   FirstString(item, "Comment", "Text"),
			InvoiceNo:     StringOf(item, "InvoiceNo"),
			LinkID:        IntRefOf(item, "LinkId"),
			OCR:           StringOf(item, "OCR"),
			CustomerID:    customerID,
			ProjectID:     projectID,
			DepartmentID:  departmentID,
		}
		if transaction.TransactionID == "" {
			continue
		}
		transactions = append(transactions, transaction)
	}

	c.log.Info(fmt.Sprintf("GetTransactions: retrieved %d transaction lines", len(transactions)))
	return transactions, nil
}

// extractDimensions pulls at most one id per dimension type from the
// line's dimension list. Dimension types are matched case-insensitively;
// entries with a missing or unparsable id are dropped, not defaulted.
func extractDimensions(item Node) (customerID, projectID, departmentID *int) {
	root := NodeOf(item, "Dimensions")
	if root == nil {
		root = NodeOf(item, "Dimension")
	}

	dims := ListOf(root, "Dimension")
	if len(dims) == 0 {
		dims = ListOf(root, "Dimensions")
	}

	for _, d := range dims {
		id := IntRefOf(d, "Id")
		if id == nil {
			id = IntRefOf(d, "Value")
		}
		if id == nil {
			continue
		}
		switch strings.ToLower(StringOf(d, "Type")) {
		case "customer":
			customerID = id
		case "project":
			projectID = id
		case "department":
			departmentID = id
		}
	}
	return customerID, projectID, departmentID
}
