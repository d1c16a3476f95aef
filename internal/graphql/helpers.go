package graphql

import (
	"sort"
	"time"

	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

func addressInputToModel(input *AddressInput) *melhorenvio.Address {
	if input == nil {
		return nil
	}
	return &melhorenvio.Address{
		Name:            str(input.Name),
		Phone:           str(input.Phone),
		Email:           str(input.Email),
		Document:        str(input.Document),
		CompanyDocument: str(input.CompanyDocument),
		StateRegister:   str(input.StateRegister),
		Address:         str(input.Address),
		Complement:      str(input.Complement),
		Number:          str(input.Number),
		District:        str(input.District),
		City:            str(input.City),
		StateAbbr:       str(input.StateAbbr),
		CountryID:       str(input.CountryID),
		PostalCode:      str(input.PostalCode),
		Note:            str(input.Note),
	}
}

func productsInputToModel(inputs []*ProductInput) []melhorenvio.Product {
	if len(inputs) == 0 {
		return nil
	}
	products := make([]melhorenvio.Product, 0, len(inputs))
	for _, input := range inputs {
		if input == nil {
			continue
		}
		p := melhorenvio.Product{
			ID:           str(input.ID),
			Name:         str(input.Name),
			UnitaryValue: num(input.UnitaryValue),
			Weight:       num(input.Weight),
			Width:        num(input.Width),
			Height:       num(input.Height),
			Length:       num(input.Length),
		}
		if input.Quantity != nil {
			p.Quantity = *input.Quantity
		}
		if input.IsVirtual != nil {
			p.IsVirtual = *input.IsVirtual
		}
		products = append(products, p)
	}
	return products
}

func volumesInputToModel(inputs []*VolumeInput) melhorenvio.Volumes {
	volumes := make([]melhorenvio.Volume, 0, len(inputs))
	for _, input := range inputs {
		if input == nil {
			continue
		}
		volumes = append(volumes, melhorenvio.Volume{
			Height: num(input.Height),
			Width:  num(input.Width),
			Length: num(input.Length),
			Weight: num(input.Weight),
		})
	}
	return melhorenvio.VolumeList(volumes...)
}

func optionsInputToModel(input *OptionsInput) *melhorenvio.Options {
	if input == nil {
		return nil
	}
	opts := &melhorenvio.Options{
		InsuranceValue: num(input.InsuranceValue),
		Receipt:        flag(input.Receipt),
		OwnHand:        flag(input.OwnHand),
		Collect:        flag(input.Collect),
		Reverse:        flag(input.Reverse),
		NonCommercial:  flag(input.NonCommercial),
		Platform:       str(input.Platform),
	}
	if input.Invoice != nil {
		opts.Invoice = &melhorenvio.Invoice{Key: input.Invoice.Key}
	}
	return opts
}

func payloadInputToModel(input CartPayloadInput) *melhorenvio.CartPayload {
	payload := &melhorenvio.CartPayload{
		From:     addressInputToModel(input.From),
		To:       addressInputToModel(input.To),
		Agency:   input.Agency,
		Products: productsInputToModel(input.Products),
		Volumes:  volumesInputToModel(input.Volumes),
		Options:  optionsInputToModel(input.Options),
	}
	if input.Service != nil {
		payload.Service = *input.Service
	}
	return payload
}

func cartContextInputToModel(input CartContextInput) cart.CartContext {
	var cc cart.CartContext
	for _, item := range input.Items {
		if item == nil {
			continue
		}
		cc.Items = append(cc.Items, cart.CartItem{
			ProductID: item.ProductID,
			Name:      str(item.Name),
			Price:     num(item.Price),
		})
	}
	for _, fee := range input.Additional {
		if fee == nil {
			continue
		}
		if cc.Additional == nil {
			cc.Additional = make(map[string]map[string]float64)
		}
		if cc.Additional[fee.Method] == nil {
			cc.Additional[fee.Method] = make(map[string]float64)
		}
		cc.Additional[fee.Method][fee.ProductID] = fee.Amount
	}
	return cc
}

func quotationToGraphQL(q *melhorenvio.OrderQuotation) *Quotation {
	if q == nil {
		return nil
	}
	out := &Quotation{
		OrderID:      q.OrderID,
		CartItemID:   q.CartItemID,
		Protocol:     q.Protocol,
		Status:       string(q.Status),
		ChooseMethod: q.ShippingMethodID,
		Tracking:     q.Tracking,
		SelfTracking: q.SelfTracking,
	}
	if !q.UpdatedAt.IsZero() {
		out.UpdatedAt = q.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func addResultToGraphQL(r *cart.AddResult) *AddToCartResult {
	out := &AddToCartResult{
		Success:   r.Success,
		Errors:    []string{},
		Quotation: quotationToGraphQL(r.Quotation),
	}
	switch {
	case len(r.ValidationErrors) > 0:
		out.Errors = r.ValidationErrors
	case r.RemoteError != "":
		out.Errors = []string{r.RemoteError}
	}
	return out
}

// cartInfoToGraphQL lists products and their extras sorted by id.
func cartInfoToGraphQL(info cart.CartInfo) *CartInfo {
	out := &CartInfo{Products: []*CartProduct{}}
	for id, p := range info.Products {
		product := &CartProduct{
			ProductID: id,
			Name:      p.Name,
			Price:     p.Price,
			Extras:    []*ProductExtra{},
		}
		for method, amount := range p.Extras {
			product.Extras = append(product.Extras, &ProductExtra{Method: method, Amount: amount})
		}
		sort.Slice(product.Extras, func(i, j int) bool {
			return product.Extras[i].Method < product.Extras[j].Method
		})
		out.Products = append(out.Products, product)
	}
	sort.Slice(out.Products, func(i, j int) bool {
		return out.Products[i].ProductID < out.Products[j].ProductID
	})
	return out
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func flag(b *bool) bool {
	return b != nil && *b
}
