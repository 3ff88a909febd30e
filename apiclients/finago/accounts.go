package finago

import (
	"context"
	"fmt"
)

// GetAccountList fetches the chart of accounts via the account service.
// The operation takes no search parameters, so every sync retrieves the
// full list; the idempotent upsert makes that safe.
func (c *Client) GetAccountList(ctx context.Context) ([]Account, error) {
	inner := fmt.Sprintf(`<GetAccountList xmlns="%s" />`, c.ns)

	doc, err := c.Call(ctx, "GetAccountList", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetAccountListResponse", "GetAccountListResult")

	items := ListOf(result, "AccountData")
	if len(items) == 0 {
		items = ListOf(result, "Account")
	}

	var accounts []Account
	for _, item := range items {
		account := Account{
			AccountNo:   StringOf(item, "AccountNo"),
			Name:        StringOf(item, "AccountName"),
			AccountType: StringOf(item, "AccountTax"),
			// The AccountData model has no explicit active flag.
			IsActive: true,
			VatCode:  StringOf(item, "TaxNo"),
			// Balances can be filled in later from the balance endpoint.
			OpeningBalance: 0,
			ClosingBalance: 0,
		}
		if account.AccountNo == "" {
			continue
		}
		accounts = append(accounts, account)
	}

	c.log.Info(fmt.Sprintf("GetAccountList: retrieved %d accounts", len(accounts)))
	return accounts, nil
}
