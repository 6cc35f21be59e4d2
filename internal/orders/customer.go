package orders

import (
	"strings"

	"github.com/dew-13/solestyle/internal/models"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

type customerSource func(explicit Customer, addr models.ShippingAddress) string

// Candidate sources per field, first non-empty wins.
var (
	nameSources = []customerSource{
		func(c Customer, _ models.ShippingAddress) string { return c.Name },
		func(_ Customer, a models.ShippingAddress) string { return a.FullName },
		func(_ Customer, a models.ShippingAddress) string { return a.Name },
	}
	emailSources = []customerSource{
		func(c Customer, _ models.ShippingAddress) string { return c.Email },
		func(_ Customer, a models.ShippingAddress) string { return a.Email },
	}
	phoneSources = []customerSource{
		func(c Customer, _ models.ShippingAddress) string { return c.Phone },
		func(_ Customer, a models.ShippingAddress) string { return a.Phone },
		func(_ Customer, a models.ShippingAddress) string { return a.Mobile },
		func(_ Customer, a models.ShippingAddress) string { return a.Contact },
	}
)

func firstNonEmpty(sources []customerSource, c Customer, addr models.ShippingAddress) string {
	for _, src := range sources {
		if v := strings.TrimSpace(src(c, addr)); v != "" {
			return v
		}
	}
	return ""
}

// ResolveCustomer fills customer identity fields missing from the request
// from the shipping address.
func ResolveCustomer(explicit Customer, addr models.ShippingAddress) Customer {
	return Customer{
		Name:  firstNonEmpty(nameSources, explicit, addr),
		Email: firstNonEmpty(emailSources, explicit, addr),
		Phone: firstNonEmpty(phoneSources, explicit, addr),
	}
}
