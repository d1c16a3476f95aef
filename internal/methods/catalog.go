// Package methods holds the Melhor Envio shipping methods offered at checkout
// and formats their quotations as storefront rates.
package methods

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// RatePrefix marks rate ids created by this integration.
const RatePrefix = "melhorenvio_"

// ErrMethodNotFound is returned when a method is not in the catalog.
var ErrMethodNotFound = errors.New("shipping method not found")

// Method is a shipping method offered at checkout.
type Method struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Enabled bool   `json:"enabled"`
}

// Carrier returns the carrier class of the method.
func (m Method) Carrier() melhorenvio.Carrier {
	return melhorenvio.Classify(m.Code)
}

// DefaultMethods returns the methods shipped with the integration, all enabled.
func DefaultMethods() []Method {
	return []Method{
		{ID: "pac", Code: melhorenvio.ServicePAC, Title: "Correios Pac", Company: "Correios", Enabled: true},
		{ID: "sedex", Code: melhorenvio.ServiceSEDEX, Title: "Correios Sedex", Company: "Correios", Enabled: true},
		{ID: "jadlog_package", Code: melhorenvio.ServiceJadlogPackage, Title: "Jadlog .Package", Company: "Jadlog", Enabled: true},
		{ID: "jadlog_com", Code: melhorenvio.ServiceJadlogCom, Title: "Jadlog .Com", Company: "Jadlog", Enabled: true},
		{ID: "via_brasil_rodoviario", Code: melhorenvio.ServiceViaBrasil, Title: "Via Brasil Rodoviário", Company: "Via Brasil", Enabled: true},
		{ID: "latam_cargo", Code: melhorenvio.ServiceLatamCargo, Title: "LATAM Cargo Próximo Dia", Company: "LATAM Cargo", Enabled: true},
		{ID: "azul_amanha", Code: melhorenvio.ServiceAzulAmanha, Title: "Azul Cargo Amanhã", Company: "Azul Cargo", Enabled: true},
		{ID: "azul_ecommerce", Code: melhorenvio.ServiceAzulEcommerce, Title: "Azul Cargo eCommerce", Company: "Azul Cargo", Enabled: true},
		{ID: "mini_envios", Code: melhorenvio.ServiceCorreiosMini, Title: "Correios Mini Envios", Company: "Correios", Enabled: true},
	}
}

// Catalog manages the shipping methods.
type Catalog struct {
	methods map[string]Method
	mu      sync.RWMutex
}

// NewCatalog creates a catalog holding methods.
func NewCatalog(methods ...Method) *Catalog {
	c := &Catalog{
		methods: make(map[string]Method, len(methods)),
	}
	for _, m := range methods {
		c.Register(m)
	}
	return c
}

// Register adds or replaces a method.
func (c *Catalog) Register(m Method) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[m.ID] = m
}

// Get returns a method by id.
func (c *Catalog) Get(id string) (Method, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.methods[id]; ok {
		return m, nil
	}
	return Method{}, fmt.Errorf("%w: %s", ErrMethodNotFound, id)
}

// ByCode returns the method with a Melhor Envio service code.
func (c *Catalog) ByCode(code int) (Method, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.methods {
		if m.Code == code {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: code %d", ErrMethodNotFound, code)
}

// All returns every method ordered by code.
func (c *Catalog) All() []Method {
	c.mu.RLock()
	result := make([]Method, 0, len(c.methods))
	for _, m := range c.methods {
		result = append(result, m)
	}
	c.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// Enabled returns the enabled methods ordered by code.
func (c *Catalog) Enabled() []Method {
	all := c.All()
	result := all[:0]
	for _, m := range all {
		if m.Enabled {
			result = append(result, m)
		}
	}
	return result
}

// Restrict enables only the methods whose code is listed. An empty list
// leaves the catalog unchanged.
func (c *Catalog) Restrict(codes []int) {
	if len(codes) == 0 {
		return
	}
	keep := make(map[int]bool, len(codes))
	for _, code := range codes {
		keep[code] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, m := range c.methods {
		m.Enabled = keep[m.Code]
		c.methods[id] = m
	}
}

// Codes returns the service codes of the enabled methods.
func (c *Catalog) Codes() []int {
	enabled := c.Enabled()
	codes := make([]int, 0, len(enabled))
	for _, m := range enabled {
		codes = append(codes, m.Code)
	}
	return codes
}

// CodesString returns the enabled codes joined by commas, as the
// calculate endpoint expects them.
func (c *Catalog) CodesString() string {
	codes := c.Codes()
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, strconv.Itoa(code))
	}
	return strings.Join(parts, ",")
}

// Count returns the number of methods.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.methods)
}

// IsMelhorEnvioMethod reports whether a checkout rate id belongs to this integration.
func IsMelhorEnvioMethod(id string) bool {
	return strings.Contains(id, RatePrefix)
}
