package methods

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// HandlingFee is added to quoted prices: either a fixed amount or a
// percentage of the price.
type HandlingFee struct {
	Amount  decimal.Decimal
	Percent bool
}

// ParseHandlingFee parses "2.50", "2,50" or "5%". An empty string disables the fee.
func ParseHandlingFee(s string) (HandlingFee, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HandlingFee{}, nil
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	amount, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return HandlingFee{}, fmt.Errorf("invalid handling fee %q: %w", s, err)
	}
	if amount.IsNegative() {
		return HandlingFee{}, fmt.Errorf("invalid handling fee %q: negative", s)
	}
	return HandlingFee{Amount: amount, Percent: percent}, nil
}

// Apply returns price plus the fee, rounded to cents.
func (f HandlingFee) Apply(price decimal.Decimal) decimal.Decimal {
	fee := f.Amount
	if f.Percent {
		fee = price.Mul(f.Amount).Div(decimal.NewFromInt(100))
	}
	return price.Add(fee).Round(2)
}

// RateSettings control how quotations are shown at checkout.
type RateSettings struct {
	ShowDeliveryTime bool
	ExtraDays        int
	HandlingFee      HandlingFee
}

// RateMeta is stored with the rate on the order.
type RateMeta struct {
	DeliveryTime int    `json:"delivery_time"`
	Company      string `json:"company"`
}

// Rate is a shipping option shown at checkout.
type Rate struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Cost     float64  `json:"cost"`
	Code     int      `json:"code"`
	MetaData RateMeta `json:"meta_data"`
}

// FormatRate turns the quotation of a method into a checkout rate. Results
// with an error or without a positive price produce no rate.
func FormatRate(m Method, result melhorenvio.QuotationResult, settings RateSettings) (*Rate, bool) {
	if result.Error != "" || result.Price <= 0 {
		return nil, false
	}

	cost := settings.HandlingFee.Apply(decimal.NewFromFloat(result.Price))

	label := m.Title
	if settings.ShowDeliveryTime {
		label += deliveryLabel(result.DeliveryRange, result.DeliveryTime, settings.ExtraDays)
	}

	return &Rate{
		ID:    RatePrefix + m.ID,
		Label: label,
		Cost:  cost.InexactFloat64(),
		Code:  m.Code,
		MetaData: RateMeta{
			DeliveryTime: result.DeliveryTime + settings.ExtraDays,
			Company:      result.Company.Name,
		},
	}, true
}

// FormatRates formats the quotations of the enabled methods, in catalog order.
func FormatRates(c *Catalog, results []melhorenvio.QuotationResult, settings RateSettings) []Rate {
	byCode := make(map[int]melhorenvio.QuotationResult, len(results))
	for _, r := range results {
		byCode[r.ID] = r
	}

	rates := []Rate{}
	for _, m := range c.Enabled() {
		result, ok := byCode[m.Code]
		if !ok {
			continue
		}
		if rate, ok := FormatRate(m, result, settings); ok {
			rates = append(rates, *rate)
		}
	}
	return rates
}

func deliveryLabel(r melhorenvio.DeliveryRange, deliveryTime, extra int) string {
	lo, hi := r.Min, r.Max
	if hi == 0 {
		lo, hi = deliveryTime, deliveryTime
	}
	if hi == 0 {
		return ""
	}
	if lo == 0 {
		lo = hi
	}
	lo += extra
	hi += extra
	if lo == hi {
		return fmt.Sprintf(" (%d dias úteis)", hi)
	}
	return fmt.Sprintf(" (%d a %d dias úteis)", lo, hi)
}
