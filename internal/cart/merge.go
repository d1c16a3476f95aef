package cart

import "github.com/tournevent/melhorenvio/pkg/melhorenvio"

type optional[T any] struct {
	value T
	ok    bool
}

func some[T any](v T, ok bool) optional[T] {
	return optional[T]{value: v, ok: ok}
}

// resolve returns the saved value when present and fresh otherwise.
func resolve[T any](saved optional[T], fresh T) T {
	if saved.ok {
		return saved.value
	}
	return fresh
}

// resolveFunc is resolve with a fresh value that is only computed when needed.
func resolveFunc[T any](saved optional[T], fresh func() (T, error)) (T, error) {
	if saved.ok {
		return saved.value, nil
	}
	return fresh()
}

func savedProducts(p *melhorenvio.SavedPayload) optional[[]melhorenvio.Product] {
	if p == nil {
		return optional[[]melhorenvio.Product]{}
	}
	return some(p.Products, len(p.Products) > 0)
}

func savedBuyer(p *melhorenvio.SavedPayload) optional[*melhorenvio.Address] {
	if p == nil {
		return optional[*melhorenvio.Address]{}
	}
	return some(p.Buyer, p.Buyer != nil)
}

func savedSettings(p *melhorenvio.SavedPayload) optional[*melhorenvio.Settings] {
	if p == nil {
		return optional[*melhorenvio.Settings]{}
	}
	return some(p.Options, p.Options != nil)
}

// withoutVirtual returns a copy of products without virtual items.
func withoutVirtual(products []melhorenvio.Product) []melhorenvio.Product {
	out := make([]melhorenvio.Product, 0, len(products))
	for _, p := range products {
		if p.IsVirtual {
			continue
		}
		out = append(out, p)
	}
	return out
}

// normalizedAddress returns a copy of addr with its postal code reduced to
// digits. A code without any digit is kept as typed so validation can report it.
func normalizedAddress(addr *melhorenvio.Address) *melhorenvio.Address {
	if addr == nil {
		return nil
	}
	out := *addr
	if digits := melhorenvio.NormalizePostalCode(out.PostalCode); digits != "" {
		out.PostalCode = digits
	}
	return &out
}
