package melhorenvio

import (
	"bytes"
	"encoding/json"
	"time"
)

// Platform identifies this integration in every cart submission.
const Platform = "WooCommerce V2"

// QuotationStatus represents the local status of an order sent to the cart.
type QuotationStatus string

const (
	StatusPending     QuotationStatus = "pending"
	StatusReleased    QuotationStatus = "released"
	StatusPosted      QuotationStatus = "posted"
	StatusDelivered   QuotationStatus = "delivered"
	StatusCanceled    QuotationStatus = "canceled"
	StatusUndelivered QuotationStatus = "undelivered"
)

// IsValid reports whether s is a known status.
func (s QuotationStatus) IsValid() bool {
	switch s {
	case StatusPending,
		StatusReleased,
		StatusPosted,
		StatusDelivered,
		StatusCanceled,
		StatusUndelivered:
		return true
	default:
		return false
	}
}

// Address is a shipping party (sender or recipient) as Melhor Envio expects it.
type Address struct {
	Name            string `json:"name"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	Document        string `json:"document,omitempty"`
	CompanyDocument string `json:"company_document,omitempty"`
	StateRegister   string `json:"state_register,omitempty"`
	Address         string `json:"address"`
	Complement      string `json:"complement,omitempty"`
	Number          string `json:"number"`
	District        string `json:"district,omitempty"`
	City            string `json:"city"`
	StateAbbr       string `json:"state_abbr"`
	CountryID       string `json:"country_id,omitempty"`
	PostalCode      string `json:"postal_code"`
	Note            string `json:"note,omitempty"`
}

// Product is an order line sent with the shipment.
type Product struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitaryValue float64 `json:"unitary_value"`
	Weight       float64 `json:"weight"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Length       float64 `json:"length"`
	IsVirtual    bool    `json:"is_virtual,omitempty"`
}

// Volume is one physical package of the shipment.
type Volume struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
}

// Volumes is the payload volume list. Correios shipments carry exactly one
// volume and are serialized as a single object instead of an array.
type Volumes struct {
	items  []Volume
	single bool
}

// VolumeList returns a Volumes serialized as an array.
func VolumeList(items ...Volume) Volumes {
	return Volumes{items: items}
}

// SingleVolume returns a Volumes serialized as one object.
func SingleVolume(v Volume) Volumes {
	return Volumes{items: []Volume{v}, single: true}
}

// Items returns the volumes in order.
func (v Volumes) Items() []Volume {
	return v.items
}

// Len returns the number of volumes.
func (v Volumes) Len() int {
	return len(v.items)
}

// IsSingle reports whether the volumes are serialized as one object.
func (v Volumes) IsSingle() bool {
	return v.single
}

// MarshalJSON implements json.Marshaler.
func (v Volumes) MarshalJSON() ([]byte, error) {
	if v.single && len(v.items) == 1 {
		return json.Marshal(v.items[0])
	}
	if v.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.items)
}

// UnmarshalJSON implements json.Unmarshaler. It accepts an object or an array.
func (v *Volumes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = Volumes{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one Volume
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*v = SingleVolume(one)
		return nil
	}
	var items []Volume
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*v = VolumeList(items...)
	return nil
}

// Invoice references the fiscal document of an order.
type Invoice struct {
	Key string `json:"key,omitempty"`
}

// Options are the optional services and metadata of a cart submission.
type Options struct {
	InsuranceValue float64  `json:"insurance_value"`
	Receipt        bool     `json:"receipt"`
	OwnHand        bool     `json:"own_hand"`
	Collect        bool     `json:"collect"`
	Reverse        bool     `json:"reverse"`
	NonCommercial  bool     `json:"non_commercial"`
	Invoice        *Invoice `json:"invoice"`
	Platform       string   `json:"platform"`
	Reminder       *string  `json:"reminder"`
}

// Settings are the store-level optional services selected by the merchant.
type Settings struct {
	InsuranceValue bool `json:"insurance_value"`
	Receipt        bool `json:"receipt"`
	OwnHand        bool `json:"own_hand"`
}

// CartPayload is the document posted to the Melhor Envio cart.
type CartPayload struct {
	From     *Address  `json:"from"`
	To       *Address  `json:"to"`
	Agency   *int64    `json:"agency"`
	Service  int       `json:"service"`
	Products []Product `json:"products"`
	Volumes  Volumes   `json:"volumes"`
	Options  *Options  `json:"options"`
}

// SavedPayload is a previously persisted draft for an order. Present fields
// take precedence over freshly supplied values when a payload is rebuilt.
type SavedPayload struct {
	OrderID  int64     `json:"order_id"`
	Products []Product `json:"products,omitempty"`
	Buyer    *Address  `json:"buyer,omitempty"`
	Options  *Settings `json:"options,omitempty"`
}

// OrderQuotation tracks an order that was sent to the remote cart.
type OrderQuotation struct {
	OrderID          int64           `json:"order_id"`
	CartItemID       string          `json:"order_id_melhorenvio"`
	Protocol         string          `json:"protocol"`
	Status           QuotationStatus `json:"status"`
	ShippingMethodID int             `json:"choose_method"`
	Tracking         string          `json:"tracking,omitempty"`
	SelfTracking     string          `json:"self_tracking,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Dimensions are the measures of a quoted package.
type Dimensions struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// QuotationPackage is one package computed by the quotation.
type QuotationPackage struct {
	Weight     float64    `json:"weight"`
	Dimensions Dimensions `json:"dimensions"`
}

// DeliveryRange is the estimated delivery window in business days.
type DeliveryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Company is the carrier behind a quoted service.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// QuotationResult is the quotation of one shipping service.
type QuotationResult struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Price         float64            `json:"price,string,omitempty"`
	DeliveryTime  int                `json:"delivery_time,omitempty"`
	DeliveryRange DeliveryRange      `json:"delivery_range"`
	Company       Company            `json:"company"`
	Packages      []QuotationPackage `json:"packages,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Agency is a carrier drop-off point.
type Agency struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CompanyID int    `json:"company_id,omitempty"`
	City      string `json:"city,omitempty"`
	StateAbbr string `json:"state_abbr,omitempty"`
}
