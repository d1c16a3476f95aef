package graphql

// Input and result types of schema.graphqls. Nullable fields are pointers.

type AddressInput struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Document        *string `json:"document"`
	CompanyDocument *string `json:"company_document"`
	StateRegister   *string `json:"state_register"`
	Address         *string `json:"address"`
	Complement      *string `json:"complement"`
	Number          *string `json:"number"`
	District        *string `json:"district"`
	City            *string `json:"city"`
	StateAbbr       *string `json:"state_abbr"`
	CountryID       *string `json:"country_id"`
	PostalCode      *string `json:"postal_code"`
	Note            *string `json:"note"`
}

type ProductInput struct {
	ID           *string  `json:"id"`
	Name         *string  `json:"name"`
	Quantity     *int     `json:"quantity"`
	UnitaryValue *float64 `json:"unitary_value"`
	Weight       *float64 `json:"weight"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	Length       *float64 `json:"length"`
	IsVirtual    *bool    `json:"is_virtual"`
}

type VolumeInput struct {
	Height *float64 `json:"height"`
	Width  *float64 `json:"width"`
	Length *float64 `json:"length"`
	Weight *float64 `json:"weight"`
}

type InvoiceInput struct {
	Key string `json:"key"`
}

type OptionsInput struct {
	InsuranceValue *float64      `json:"insurance_value"`
	Receipt        *bool         `json:"receipt"`
	OwnHand        *bool         `json:"own_hand"`
	Collect        *bool         `json:"collect"`
	Reverse        *bool         `json:"reverse"`
	NonCommercial  *bool         `json:"non_commercial"`
	Invoice        *InvoiceInput `json:"invoice"`
	Platform       *string       `json:"platform"`
}

type CartPayloadInput struct {
	From     *AddressInput   `json:"from"`
	To       *AddressInput   `json:"to"`
	Agency   *int64          `json:"agency"`
	Service  *int            `json:"service"`
	Products []*ProductInput `json:"products"`
	Volumes  []*VolumeInput  `json:"volumes"`
	Options  *OptionsInput   `json:"options"`
}

type CartItemInput struct {
	ProductID string   `json:"product_id"`
	Name      *string  `json:"name"`
	Price     *float64 `json:"price"`
}

type CartFeeInput struct {
	Method    string  `json:"method"`
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
}

type CartContextInput struct {
	Items      []*CartItemInput `json:"items"`
	Additional []*CartFeeInput  `json:"additional"`
}

type Quotation struct {
	OrderID      int64  `json:"order_id"`
	CartItemID   string `json:"order_id_melhorenvio"`
	Protocol     string `json:"protocol"`
	Status       string `json:"status"`
	ChooseMethod int    `json:"choose_method"`
	Tracking     string `json:"tracking"`
	SelfTracking string `json:"self_tracking"`
	UpdatedAt    string `json:"updated_at"`
}

type AddToCartResult struct {
	Success   bool       `json:"success"`
	Errors    []string   `json:"errors"`
	Quotation *Quotation `json:"quotation"`
}

type RemoveFromCartResult struct {
	Success bool `json:"success"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type ProductExtra struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

type CartProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Extras    []*ProductExtra `json:"extras"`
}

type CartInfo struct {
	Products []*CartProduct `json:"products"`
}
