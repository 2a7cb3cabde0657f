package pricing

import (
	"reflect"
	"testing"
)

func fixed(id string, cat Category, minQty int, price Money) Rule {
	return Rule{ID: id, Category: cat, MinQuantity: minQty, Compute: ComputeFixed, FixedPrice: price}
}

func TestResolveBasePriceFallback(t *testing.T) {
	p := Product{ID: "p1", BasePrice: 250}
	res := Resolve(p, 3)
	if res.UnitPrice != 250 {
		t.Fatalf("unit price = %d, want 250", res.UnitPrice)
	}
	if res.Applied != nil {
		t.Fatalf("applied = %+v, want nil", res.Applied)
	}
}

func TestResolvePrecedenceOverPrice(t *testing.T) {
	p := Product{BasePrice: 500}
	p.Rules.Append(fixed("g", CategoryGlobal, 0, 10))
	p.Rules.Append(fixed("t", CategoryTemplate, 0, 100))

	res := Resolve(p, 1)
	if res.UnitPrice != 100 {
		t.Fatalf("unit price = %d, want the more specific tier's 100", res.UnitPrice)
	}
	if res.Applied == nil || res.Applied.ID != "t" {
		t.Fatalf("applied = %+v, want template rule", res.Applied)
	}
}

func TestResolveTierPrecedenceOrder(t *testing.T) {
	p := Product{BasePrice: 500}
	p.Rules.Append(fixed("g", CategoryGlobal, 0, 400))
	p.Rules.Append(fixed("c", CategoryProductCategory, 0, 300))
	p.Rules.Append(fixed("v", CategoryVariant, 0, 200))
	p.Rules.Append(fixed("t", CategoryTemplate, 0, 100))

	steps := []struct {
		drop func()
		want Money
	}{
		{func() {}, 100},
		{func() { p.Rules.Template = nil }, 200},
		{func() { p.Rules.Variant = nil }, 300},
		{func() { p.Rules.Category = nil }, 400},
		{func() { p.Rules.Global = nil }, 500},
	}
	for _, step := range steps {
		step.drop()
		if got := Resolve(p, 1).UnitPrice; got != step.want {
			t.Fatalf("unit price = %d, want %d", got, step.want)
		}
	}
}

func TestResolveDescendingThreshold(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(fixed("q1", CategoryGlobal, 1, 90))
	p.Rules.Append(fixed("q5", CategoryGlobal, 5, 70))
	p.Rules.Append(fixed("q10", CategoryGlobal, 10, 50))

	cases := []struct {
		qty  int
		want Money
	}{
		{1, 90},
		{4, 90},
		{5, 70},
		{7, 70},
		{10, 50},
		{100, 50},
	}
	for _, c := range cases {
		if got := Resolve(p, c.qty).UnitPrice; got != c.want {
			t.Fatalf("qty %d: unit price = %d, want %d", c.qty, got, c.want)
		}
	}
}

func TestResolvePercentage(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(Rule{ID: "pct", Category: CategoryGlobal, Compute: ComputePercentage, PercentBps: 2000})

	if got := Resolve(p, 1).UnitPrice; got != 80 {
		t.Fatalf("unit price = %d, want 80", got)
	}
}

func TestResolveSkipsUnpricedRules(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(Rule{ID: "empty", Category: CategoryTemplate, Compute: ComputeFixed, FixedPrice: 0})
	p.Rules.Append(fixed("g", CategoryGlobal, 0, 60))

	res := Resolve(p, 1)
	if res.UnitPrice != 60 {
		t.Fatalf("unit price = %d, want 60", res.UnitPrice)
	}
	if res.Applied == nil || res.Applied.ID != "g" {
		t.Fatalf("applied = %+v, want global rule after skipping unpriced tier", res.Applied)
	}
}

func TestResolveBoundaryQuantity(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(fixed("q5", CategoryGlobal, 5, 70))

	if got := Resolve(p, 4).UnitPrice; got != 100 {
		t.Fatalf("qty 4: unit price = %d, want base 100", got)
	}
	if got := Resolve(p, 5).UnitPrice; got != 70 {
		t.Fatalf("qty 5: unit price = %d, want 70", got)
	}
}

func TestResolveZeroQuantityDegradesToBase(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(fixed("q1", CategoryGlobal, 1, 70))

	if got := Resolve(p, 0).UnitPrice; got != 100 {
		t.Fatalf("qty 0: unit price = %d, want base 100", got)
	}
}

func TestResolveStableTieBreak(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(fixed("first", CategoryGlobal, 5, 70))
	p.Rules.Append(fixed("second", CategoryGlobal, 5, 60))

	res := Resolve(p, 10)
	if res.Applied == nil || res.Applied.ID != "first" {
		t.Fatalf("applied = %+v, want the first listed rule on a threshold tie", res.Applied)
	}
}

func TestResolveIdempotent(t *testing.T) {
	p := Product{BasePrice: 100}
	p.Rules.Append(fixed("q5", CategoryGlobal, 5, 70))
	p.Rules.Append(fixed("q1", CategoryGlobal, 1, 90))

	a := Resolve(p, 6)
	b := Resolve(p, 6)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("resolutions differ: %+v vs %+v", a, b)
	}
}

func TestRulePriced(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		want bool
	}{
		{"fixed with price", Rule{Compute: ComputeFixed, FixedPrice: 100}, true},
		{"fixed without price", Rule{Compute: ComputeFixed}, false},
		{"percentage with bps", Rule{Compute: ComputePercentage, PercentBps: 500}, true},
		{"percentage without bps", Rule{Compute: ComputePercentage}, false},
		{"unknown compute", Rule{Compute: "list_price"}, false},
	}
	for _, c := range cases {
		if got := c.rule.Priced(); got != c.want {
			t.Fatalf("%s: Priced() = %v, want %v", c.name, got, c.want)
		}
	}
}
