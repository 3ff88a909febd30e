package db

// finago.go persists canonical Finago records into the sync tables. Each
// upsert runs in one transaction per batch and returns the number of rows
// processed, for reporting. Applying the same batch twice yields the same
// final state as applying it once.

import (
	"context"
	"fmt"

	"finagosync/apiclients/finago"
)

// CompaniesUpsert upserts a batch of company records.
func (db *DB) CompaniesUpsert(ctx context.Context, companies []finago.Company) (int, error) {
	if len(companies) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.companyUpsertStmt.NamedStmt)
	for _, c := range companies {
		namedArgs := map[string]any{
			"CompanyId":      c.CompanyID,
			"CompanyName":    c.Name,
			"OrganizationNo": c.OrganizationNo,
			"CustomerNumber": c.CustomerNumber,
			"Email":          c.Email,
			"Phone":          c.Phone,
			"DateChanged":    c.DateChanged,
		}
		if err := db.companyUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("company upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert company %d: %w", c.CompanyID, err)
		}
	}
	return len(companies), tx.Commit()
}

// PersonsUpsert upserts a batch of person records. The companyId and
// customerId columns both carry the resolved company association.
func (db *DB) PersonsUpsert(ctx context.Context, persons []finago.Person) (int, error) {
	if len(persons) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.personUpsertStmt.NamedStmt)
	for _, p := range persons {
		namedArgs := map[string]any{
			"PersonId":    p.PersonID,
			"CompanyId":   p.CompanyID,
			"CustomerId":  p.CompanyID,
			"Name":        nullIfEmpty(p.Name),
			"Email":       nullIfEmpty(p.Email),
			"Phone":       nullIfEmpty(p.Phone),
			"Role":        nullIfEmpty(p.Role),
			"DateChanged": nullIfEmpty(p.DateChanged),
		}
		if err := db.personUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("person upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert person %d: %w", p.PersonID, err)
		}
	}
	return len(persons), tx.Commit()
}

// InvoicesUpsert upserts a batch of invoice records.
func (db *DB) InvoicesUpsert(ctx context.Context, invoices []finago.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.invoiceUpsertStmt.NamedStmt)
	for _, inv := range invoices {
		namedArgs := map[string]any{
			"InvoiceId":      inv.InvoiceID,
			"OrderId":        inv.OrderID,
			"CustomerId":     inv.CustomerID,
			"CustomerName":   inv.CustomerName,
			"InvoiceNo":      inv.InvoiceNo,
			"InvoiceText":    inv.InvoiceText,
			"DateInvoiced":   inv.DateInvoiced,
			"DateDue":        inv.DateDue,
			"DatePaid":       inv.DatePaid,
			"DateChanged":    inv.DateChanged,
			"TotalIncVat":    inv.TotalIncVat,
			"TotalVat":       inv.TotalVat,
			"AmountPaid":     inv.AmountPaid,
			"Balance":        inv.Balance,
			"CurrencySymbol": inv.CurrencySymbol,
			"Status":         string(inv.Status),
			"ExternalStatus": inv.ExternalStatus,
			"IsCredited":     inv.IsCredited,
		}
		if err := db.invoiceUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("invoice upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert invoice %d: %w", inv.InvoiceID, err)
		}
	}
	return len(invoices), tx.Commit()
}

// ProductsUpsert upserts a batch of product records.
func (db *DB) ProductsUpsert(ctx context.Context, products []finago.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.productUpsertStmt.NamedStmt)
	for _, p := range products {
		namedArgs := map[string]any{
			"ProductId":   p.ProductID,
			"ProductNo":   p.ProductNo,
			"Name":        p.Name,
			"Description": p.Description,
			"UnitPrice":   p.UnitPrice,
			"CostPrice":   p.CostPrice,
			"IsActive":    p.IsActive,
			"VatCode":     p.VatCode,
			"DateChanged": p.DateChanged,
		}
		if err := db.productUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("product upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert product %d: %w", p.ProductID, err)
		}
	}
	return len(products), tx.Commit()
}

// TransactionsUpsert upserts a batch of ledger line records.
func (db *DB) TransactionsUpsert(ctx context.Context, transactions []finago.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.transactionUpsertStmt.NamedStmt)
	for _, t := range transactions {
		namedArgs := map[string]any{
			"TransactionId": t.TransactionID,
			"VoucherNo":     t.VoucherNo,
			"LineNo":        t.LineNo,
			"Date":          t.Date,
			"AccountNo":     t.AccountNo,
			"Amount":        t.Amount,
			"Debit":         t.Debit,
			"Credit":        t.Credit,
			"Currency":      t.Currency,
			"Description":   t.Description,
			"InvoiceNo":     t.InvoiceNo,
			"LinkId":        t.LinkID,
			"Ocr":           t.OCR,
			"CustomerId":    t.CustomerID,
			"ProjectId":     t.ProjectID,
			"DepartmentId":  t.DepartmentID,
		}
		if err := db.transactionUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("transaction upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert transaction %s: %w", t.TransactionID, err)
		}
	}
	return len(transactions), tx.Commit()
}

// AccountsUpsert upserts a batch of chart-of-accounts records.
func (db *DB) AccountsUpsert(ctx context.Context, accounts []finago.Account) (int, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := tx.NamedStmtContext(ctx, db.accountUpsertStmt.NamedStmt)
	for _, a := range accounts {
		namedArgs := map[string]any{
			"AccountNo":      a.AccountNo,
			"Name":           a.Name,
			"AccountType":    a.AccountType,
			"IsActive":       a.IsActive,
			"VatCode":        a.VatCode,
			"OpeningBalance": a.OpeningBalance,
			"ClosingBalance": a.ClosingBalance,
		}
		if err := db.accountUpsertStmt.verifyArgs(namedArgs); err != nil {
			return 0, fmt.Errorf("account upsert verify arguments error: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			return 0, fmt.Errorf("failed to upsert account %s: %w", a.AccountNo, err)
		}
	}
	return len(accounts), tx.Commit()
}

// nullIfEmpty maps an empty string to nil so optional text columns store
// NULL rather than "".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
