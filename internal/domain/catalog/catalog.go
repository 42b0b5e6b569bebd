package catalog

// Package identifiers, the closed set of purchasable plans.
const (
	PlanBasic    = "BASIC"
	PlanStandard = "STANDARD"
	PlanPremium  = "PREMIUM"
)

// Package is one purchasable service tier at a given currency.
type Package struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
}

type entry struct {
	name     string
	priceUSD float64
	priceEGP float64
	features []string
	popular  bool
}

// Catalog is the static package pricing configuration. It is loaded once and
// never mutated, so the amount snapshotted onto an Order at creation time is
// exactly what the pricing page showed.
type Catalog struct {
	order   []string
	entries map[string]entry
}

// Default returns the production catalog.
func Default() *Catalog {
	return &Catalog{
		order: []string{PlanBasic, PlanStandard, PlanPremium},
		entries: map[string]entry{
			PlanBasic: {
				name:     "Basic",
				priceUSD: 49,
				priceEGP: 2450,
				features: []string{
					"ATS-optimized resume",
					"48-hour delivery",
					"PDF & Word formats",
				},
			},
			PlanStandard: {
				name:     "Standard",
				priceUSD: 99,
				priceEGP: 4950,
				features: []string{
					"Everything in Basic",
					"LinkedIn profile rewrite",
					"1 tailored cover letter",
					"1 revision round",
				},
				popular: true,
			},
			PlanPremium: {
				name:     "Premium",
				priceUSD: 199,
				priceEGP: 9950,
				features: []string{
					"Everything in Standard",
					"2 resume variations",
					"Multiple cover letters",
					"Mock interview Q&A",
					"1-week priority support",
				},
			},
		},
	}
}

// List returns every package priced in the given currency, in display order.
// An unknown currency falls back to USD pricing.
func (c *Catalog) List(currency string) []Package {
	if currency != "EGP" {
		currency = "USD"
	}

	out := make([]Package, 0, len(c.order))
	for _, id := range c.order {
		e := c.entries[id]
		price := e.priceUSD
		if currency == "EGP" {
			price = e.priceEGP
		}
		out = append(out, Package{
			ID:       id,
			Name:     e.name,
			Price:    price,
			Currency: currency,
			Features: e.features,
			Popular:  e.popular,
		})
	}
	return out
}

// Price resolves the amount charged for a plan in a currency. ok is false for
// an unknown plan; an unknown currency falls back to USD.
func (c *Catalog) Price(plan, currency string) (float64, bool) {
	e, ok := c.entries[plan]
	if !ok {
		return 0, false
	}
	if currency == "EGP" {
		return e.priceEGP, true
	}
	return e.priceUSD, true
}

// Get returns the package for a plan id at the given currency.
func (c *Catalog) Get(plan, currency string) (Package, bool) {
	price, ok := c.Price(plan, currency)
	if !ok {
		return Package{}, false
	}
	if currency != "EGP" {
		currency = "USD"
	}
	e := c.entries[plan]
	return Package{
		ID:       plan,
		Name:     e.name,
		Price:    price,
		Currency: currency,
		Features: e.features,
		Popular:  e.popular,
	}, true
}
