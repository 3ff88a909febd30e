package finago

import (
	"context"
	"fmt"
	"strings"
)

// GetPersonsDetailed fetches contacts changed on or after changedAfter via
// the person service, requesting relation data so that each person can be
// linked to a company.
func (c *Client) GetPersonsDetailed(ctx context.Context, changedAfter string) ([]Person, error) {
	ds := NormalizeChangedAfter(changedAfter)

	inner := fmt.Sprintf(`<GetPersonsDetailed xmlns="%s">
  <personSearch>
    <ChangedAfter>%s</ChangedAfter>
    <GetRelationData>true</GetRelationData>
  </personSearch>
</GetPersonsDetailed>`, c.ns, ds)

	doc, err := c.Call(ctx, "GetPersonsDetailed", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetPersonsDetailedResponse", "GetPersonsDetailedResult")

	var persons []Person
	for _, item := range ListOf(result, "PersonItem") {
		person := Person{
			PersonID:  IntOf(item, "Id"),
			CompanyID: extractPersonCompanyID(item),
			Name:      extractPersonName(item),
			Email:     extractPersonEmail(item),
			Phone:     extractPersonPhone(item),
			Role:      FirstString(item, "WorkPosition", "Role"),
			// The person service does not surface a usable change
			// timestamp; the column stays empty.
			DateChanged: "",
		}
		if person.PersonID == 0 {
			continue
		}
		persons = append(persons, person)
	}

	c.log.Info(fmt.Sprintf("GetPersonsDetailed: retrieved %d persons", len(persons)))
	return persons, nil
}

// extractPersonName prefers the FullName field, falling back to joining
// FirstName and LastName.
func extractPersonName(p Node) string {
	if full := StringOf(p, "FullName"); full != "" {
		return full
	}
	parts := []string{}
	for _, key := range []string{"FirstName", "LastName"} {
		if s := StringOf(p, key); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// extractPersonEmail resolves an email from
// PersonItem.EmailAddresses.EmailAddress[].Value, preferring an entry
// tagged as primary, else the first entry, else the flat Email field.
func extractPersonEmail(p Node) string {
	emails := ListOf(NodeOf(p, "EmailAddresses"), "EmailAddress")
	if len(emails) > 0 {
		chosen := emails[0]
		for _, e := range emails {
			if strings.EqualFold(StringOf(e, "Type"), "primary") {
				chosen = e
				break
			}
		}
		if value := StringOf(chosen, "Value"); value != "" {
			return value
		}
	}
	return StringOf(p, "Email")
}

// extractPersonPhone resolves a phone number from
// PersonItem.PhoneNumbers.PhoneNumber[].Value, preferring an entry tagged
// as mobile, else the first entry, else the flat Phone/Mobile fields;
// mobile wins over landline throughout.
func extractPersonPhone(p Node) string {
	var phone, mobile string

	phones := ListOf(NodeOf(p, "PhoneNumbers"), "PhoneNumber")
	if len(phones) > 0 {
		for _, ph := range phones {
			if strings.EqualFold(StringOf(ph, "Type"), "mobile") {
				mobile = StringOf(ph, "Value")
				break
			}
		}
		if mobile == "" {
			phone = StringOf(phones[0], "Value")
		}
	}
	if phone == "" {
		phone = StringOf(p, "Phone")
	}
	if mobile == "" {
		mobile = StringOf(p, "Mobile")
	}

	if mobile != "" {
		return mobile
	}
	return phone
}

// extractPersonCompanyID resolves the company association with a two-tier
// fallback: the first relation's customer id from
// PersonItem.RelationData.RelationData[], then the flat CustomerId field
// used for consumer customers. Returns nil when neither resolves.
func extractPersonCompanyID(p Node) *int {
	rels := ListOf(NodeOf(p, "RelationData"), "RelationData")
	if len(rels) > 0 {
		if id := IntRefOf(rels[0], "CustomerId"); id != nil {
			return id
		}
	}
	if id := IntRefOf(p, "CustomerId"); id != nil && *id != 0 {
		return id
	}
	return nil
}
