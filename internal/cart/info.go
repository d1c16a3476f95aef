package cart

// CartItem is one line of the storefront cart.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// CartContext is the storefront cart handed in by the caller: its items and
// the additional fees per shipping method, keyed by method id then product id.
type CartContext struct {
	Items      []CartItem                    `json:"items"`
	Additional map[string]map[string]float64 `json:"additional,omitempty"`
}

// ProductInfo describes one cart product.
type ProductInfo struct {
	Name   string             `json:"name"`
	Price  float64            `json:"price"`
	Extras map[string]float64 `json:"taxas_extras,omitempty"`
}

// CartInfo summarizes a cart for diagnostics.
type CartInfo struct {
	Products   map[string]ProductInfo        `json:"products,omitempty"`
	Additional map[string]map[string]float64 `json:"adicionais_extras,omitempty"`
}

// Info summarizes a cart context. Items without a product id are skipped and
// each product carries the extra fees charged for it by each method.
func Info(cc CartContext) CartInfo {
	var info CartInfo

	for _, item := range cc.Items {
		if item.ProductID == "" {
			continue
		}
		if info.Products == nil {
			info.Products = make(map[string]ProductInfo)
		}

		product := ProductInfo{Name: item.Name, Price: item.Price}
		for method, fees := range cc.Additional {
			fee, ok := fees[item.ProductID]
			if !ok {
				continue
			}
			if product.Extras == nil {
				product.Extras = make(map[string]float64)
			}
			product.Extras[method] = fee
		}
		info.Products[item.ProductID] = product
	}

	if len(cc.Additional) > 0 {
		info.Additional = cc.Additional
	}
	return info
}
