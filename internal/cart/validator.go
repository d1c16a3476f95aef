package cart

import (
	"fmt"

	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// Address roles used in validation messages.
const (
	RoleSender    = "remetente"
	RoleRecipient = "destinatario"
)

// Validate checks a payload before it is posted to the cart and returns the
// errors in display order. An empty result means the payload is valid.
func Validate(p *melhorenvio.CartPayload) []string {
	if p == nil {
		p = &melhorenvio.CartPayload{}
	}

	var errs []string

	if p.Service == 0 {
		errs = append(errs, "Informar o serviço de envio.")
	}

	isCorreios := melhorenvio.Classify(p.Service) == melhorenvio.CarrierCorreios

	errs = append(errs, validateAddress(p.From, RoleSender, isCorreios)...)
	errs = append(errs, validateAddress(p.To, RoleRecipient, isCorreios)...)

	if !isCorreios && p.Agency == nil {
		errs = append(errs, "É necessário informar a agência de postagem para esse serviço de envio")
	}

	if len(p.Products) == 0 {
		errs = append(errs, "É necessário informar os produtos do envio.")
	}
	for i, product := range p.Products {
		errs = append(errs, validateProduct(product, i)...)
	}

	if p.Options == nil {
		errs = append(errs, "Informar os opcionais do envio.")
	}

	if p.Volumes.Len() == 0 {
		return append(errs, "Informar o(s) volume(s) do envio.")
	}
	for _, v := range p.Volumes.Items() {
		errs = append(errs, validateVolume(v)...)
	}

	return errs
}

func validateAddress(addr *melhorenvio.Address, role string, isCorreios bool) []string {
	if addr == nil {
		return []string{
			fmt.Sprintf("Informar o %s o pedido.", role),
			fmt.Sprintf("Informar o CEP do %s do pedido.", role),
		}
	}

	var errs []string
	missing := func(format string) {
		errs = append(errs, fmt.Sprintf(format, role))
	}

	if addr.Name == "" {
		missing("Informar o nome do %s do pedido.")
	}
	if !isCorreios {
		if addr.Phone == "" {
			missing("Informar o telefone do %s do pedido.")
		}
		if addr.Email == "" {
			missing("Informar o e-mail do %s do pedido.")
		}
		if addr.Document == "" && addr.CompanyDocument == "" {
			missing("Informar o documento do %s do pedido.")
		}
	}
	if addr.Address == "" {
		missing("Informar o endereço do %s do pedido.")
	}
	if addr.Number == "" {
		missing("Informar o número do endereço do %s do pedido.")
	}
	if addr.City == "" {
		missing("Informar a cidade do %s do pedido.")
	}
	if addr.StateAbbr == "" {
		missing("Informar o estado do %s do pedido.")
	}

	switch {
	case addr.PostalCode == "":
		missing("Informar o CEP do %s do pedido.")
	case !melhorenvio.ValidPostalCode(addr.PostalCode):
		missing("CEP do %s incorreto.")
	}

	return errs
}

// validateProduct reports the missing fields of the product at index i.
// Messages keep the zero-based index and the "Infomar" spelling shown to
// merchants by the plugin.
func validateProduct(p melhorenvio.Product, i int) []string {
	var errs []string
	check := func(ok bool, format string) {
		if !ok {
			errs = append(errs, fmt.Sprintf(format, i))
		}
	}

	check(p.Name != "", "Infomar o nome do produto %d")
	check(p.Quantity != 0, "Infomar a quantidade do produto %d")
	check(p.UnitaryValue != 0, "Infomar o valor unitário do produto %d")
	check(p.Weight != 0, "Infomar o peso do produto %d")
	check(p.Width != 0, "Infomar a largura do produto %d")
	check(p.Height != 0, "Infomar a altura do produto %d")
	check(p.Length != 0, "Infomar o comprimento do produto %d")

	return errs
}

func validateVolume(v melhorenvio.Volume) []string {
	var errs []string
	if v.Height == 0 {
		errs = append(errs, "Informar a altura do volume.")
	}
	if v.Width == 0 {
		errs = append(errs, "Informar a largura do volume.")
	}
	if v.Length == 0 {
		errs = append(errs, "Informar o comprimento do volume.")
	}
	if v.Weight == 0 {
		errs = append(errs, "Informar o peso do volume.")
	}
	return errs
}
