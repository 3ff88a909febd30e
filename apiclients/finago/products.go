package finago

import (
	"context"
	"fmt"
)

// productReturnProps are the product properties requested from the product
// service.
var productReturnProps = []string{
	"Id",
	"No",
	"Name",
	"Description",
	"Price",
	"CostPrice",
	"IsActive",
	"Vat",
	"DateChanged",
}

// GetProducts fetches products changed on or after changedAfter via the
// product service's GetProducts operation. The product search filters on
// DateChanged rather than ChangedAfter.
func (c *Client) GetProducts(ctx context.Context, changedAfter string) ([]Product, error) {
	ds := NormalizeChangedAfter(changedAfter)

	inner := fmt.Sprintf(`<GetProducts xmlns="%s">
  <searchParams><DateChanged>%s</DateChanged></searchParams>
  <returnProperties>%s</returnProperties>
</GetProducts>`, c.ns, ds, xmlStrings(productReturnProps))

	doc, err := c.Call(ctx, "GetProducts", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetProductsResponse", "GetProductsResult")

	items := ListOf(result, "Product")
	if len(items) == 0 {
		items = ListOf(result, "ProductItem")
	}

	var products []Product
	for _, item := range items {
		product := Product{
			ProductID:   IntOf(item, "Id"),
			ProductNo:   FirstString(item, "No", "ProductNo"),
			Name:        FirstString(item, "Name", "ProductName"),
			Description: StringOf(item, "Description"),
			UnitPrice:   FloatOf(item, "Price"),
			CostPrice:   FloatOf(item, "CostPrice"),
			IsActive:    extractProductActive(item),
			VatCode:     FirstString(item, "Vat", "VatCode"),
			DateChanged: FirstString(item, "DateChanged", "ChangedDate"),
		}
		if product.ProductID == 0 {
			product.ProductID = IntOf(item, "ProductId")
		}
		if product.ProductID == 0 {
			continue
		}
		if product.UnitPrice == 0 {
			product.UnitPrice = FloatOf(item, "UnitPrice")
		}
		products = append(products, product)
	}

	c.log.Info(fmt.Sprintf("GetProducts: retrieved %d products", len(products)))
	return products, nil
}

// extractProductActive reads the IsActive flag, defaulting to active when
// the service omits it.
func extractProductActive(item Node) bool {
	if StringOf(item, "IsActive") == "" {
		return true
	}
	return BoolOf(item, "IsActive")
}
