package pricing

import "sort"

// Money is an amount in minor currency units (cents, sen).
type Money int64

// Category identifies which precedence tier a rule belongs to.
type Category string

const (
	CategoryGlobal          Category = "global"
	CategoryProductCategory Category = "category"
	CategoryTemplate        Category = "product_template"
	CategoryVariant         Category = "product_variant"
)

// Valid reports whether c is one of the four known tiers.
func (c Category) Valid() bool {
	switch c {
	case CategoryGlobal, CategoryProductCategory, CategoryTemplate, CategoryVariant:
		return true
	}
	return false
}

// Compute selects how a rule derives the unit price.
type Compute string

const (
	ComputeFixed      Compute = "fixed_price"
	ComputePercentage Compute = "percentage"
)

// precedence orders the tiers from most to least specific. The first tier
// containing a matching rule wins regardless of the prices in later tiers.
var precedence = [...]Category{
	CategoryTemplate,
	CategoryVariant,
	CategoryProductCategory,
	CategoryGlobal,
}

// Rule is one quantity tiered pricing rule.
type Rule struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	MinQuantity int      `json:"min_quantity"`
	Compute     Compute  `json:"compute"`
	FixedPrice  Money    `json:"fixed_price,omitempty"`
	PercentBps  int32    `json:"percent_bps,omitempty"`
}

// Priced reports whether the rule carries enough data to yield a price.
func (r Rule) Priced() bool {
	switch r.Compute {
	case ComputeFixed:
		return r.FixedPrice > 0
	case ComputePercentage:
		return r.PercentBps > 0
	}
	return false
}

// UnitPrice computes the per unit price this rule yields over the base price.
func (r Rule) UnitPrice(base Money) Money {
	switch r.Compute {
	case ComputeFixed:
		return r.FixedPrice
	case ComputePercentage:
		return base - base*Money(r.PercentBps)/10000
	}
	return base
}

// RuleSet holds a product's rules grouped by tier.
type RuleSet struct {
	Global   []Rule `json:"global,omitempty"`
	Category []Rule `json:"category,omitempty"`
	Template []Rule `json:"template,omitempty"`
	Variant  []Rule `json:"variant,omitempty"`
}

// Tier returns the slice backing one precedence tier.
func (s RuleSet) Tier(c Category) []Rule {
	switch c {
	case CategoryGlobal:
		return s.Global
	case CategoryProductCategory:
		return s.Category
	case CategoryTemplate:
		return s.Template
	case CategoryVariant:
		return s.Variant
	}
	return nil
}

// Append files the rule under its tier. Rules with an unknown category are
// dropped.
func (s *RuleSet) Append(r Rule) {
	switch r.Category {
	case CategoryGlobal:
		s.Global = append(s.Global, r)
	case CategoryProductCategory:
		s.Category = append(s.Category, r)
	case CategoryTemplate:
		s.Template = append(s.Template, r)
	case CategoryVariant:
		s.Variant = append(s.Variant, r)
	}
}

// Len counts rules across all tiers.
func (s RuleSet) Len() int {
	return len(s.Global) + len(s.Category) + len(s.Template) + len(s.Variant)
}

// Product is the pricing view of a catalog item.
type Product struct {
	ID        string  `json:"id"`
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	BasePrice Money   `json:"base_price"`
	Rules     RuleSet `json:"rules"`
}

// Resolution is the outcome of a price lookup. Applied is nil when no rule
// matched and the base price was used.
type Resolution struct {
	UnitPrice Money `json:"unit_price"`
	Applied   *Rule `json:"applied,omitempty"`
}

// Resolve picks the unit price for qty units of p. Tiers are visited in
// precedence order and the search stops at the first tier with a matching
// rule, even when a later tier would be cheaper.
func Resolve(p Product, qty int) Resolution {
	for _, tier := range precedence {
		if r, ok := matchTier(p.Rules.Tier(tier), qty); ok {
			return Resolution{UnitPrice: r.UnitPrice(p.BasePrice), Applied: &r}
		}
	}
	return Resolution{UnitPrice: p.BasePrice}
}

// matchTier selects the highest threshold rule satisfied by qty. Ties keep
// their original order so earlier rules win.
func matchTier(rules []Rule, qty int) (Rule, bool) {
	candidates := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Priced() {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MinQuantity > candidates[j].MinQuantity
	})
	for _, r := range candidates {
		if r.MinQuantity <= qty {
			return r, true
		}
	}
	return Rule{}, false
}
