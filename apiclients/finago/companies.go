package finago

import (
	"context"
	"fmt"
)

// companyReturnProps are the company properties requested from the CRM
// service; anything else the service could return is ignored.
var companyReturnProps = []string{
	"CompanyId",
	"ExternalId",
	"CompanyName",
	"CompanyEmail",
	"CompanyPhone",
	"OrganizationNumber",
	"ChangedAfter",
}

// GetCompanies fetches companies changed on or after changedAfter via the
// CRM service's GetCompanies operation and extracts them into canonical
// records.
func (c *Client) GetCompanies(ctx context.Context, changedAfter string) ([]Company, error) {
	ds := NormalizeChangedAfter(changedAfter)

	inner := fmt.Sprintf(`<GetCompanies xmlns="%s">
  <searchParams><ChangedAfter>%s</ChangedAfter></searchParams>
  <returnProperties>%s</returnProperties>
</GetCompanies>`, c.ns, ds, xmlStrings(companyReturnProps))

	doc, err := c.Call(ctx, "GetCompanies", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetCompaniesResponse", "GetCompaniesResult")

	var companies []Company
	for _, item := range ListOf(result, "Company") {
		company := Company{
			CompanyID:      IntOf(item, "CompanyId"),
			Name:           FirstString(item, "CompanyName", "Name"),
			OrganizationNo: StringOf(item, "OrganizationNumber"),
			// Not returned by this query; the column is kept so the schema
			// stays stable for downstream consumers.
			CustomerNumber: "",
			Email:          FirstString(item, "CompanyEmail", "Email"),
			Phone:          FirstString(item, "CompanyPhone", "Phone"),
			DateChanged:    FirstString(item, "ChangedAfter", "ChangedDate"),
		}
		if company.CompanyID == 0 {
			company.CompanyID = IntOf(item, "Id")
		}
		if company.CompanyID == 0 {
			continue
		}
		companies = append(companies, company)
	}

	c.log.Info(fmt.Sprintf("GetCompanies: retrieved %d companies", len(companies)))
	return companies, nil
}
