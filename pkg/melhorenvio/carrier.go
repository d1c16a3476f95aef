package melhorenvio

// Carrier is the class of carrier behind a shipping service.
type Carrier int

const (
	CarrierOther Carrier = iota
	CarrierCorreios
	CarrierJadlog
	CarrierAzulCargo
	CarrierLatamCargo
)

// Melhor Envio service ids.
const (
	ServicePAC           = 1
	ServiceSEDEX         = 2
	ServiceJadlogPackage = 3
	ServiceJadlogCom     = 4
	ServiceViaBrasil     = 9
	ServiceLatamCargo    = 12
	ServiceAzulAmanha    = 15
	ServiceAzulEcommerce = 16
	ServiceCorreiosMini  = 17
)

// Classify returns the carrier class of a shipping service id.
func Classify(service int) Carrier {
	switch service {
	case ServicePAC, ServiceSEDEX, ServiceCorreiosMini:
		return CarrierCorreios
	case ServiceJadlogPackage, ServiceJadlogCom:
		return CarrierJadlog
	case ServiceAzulAmanha, ServiceAzulEcommerce:
		return CarrierAzulCargo
	case ServiceLatamCargo:
		return CarrierLatamCargo
	default:
		return CarrierOther
	}
}

// String returns the carrier label used in logs and metrics.
func (c Carrier) String() string {
	switch c {
	case CarrierCorreios:
		return "correios"
	case CarrierJadlog:
		return "jadlog"
	case CarrierAzulCargo:
		return "azul_cargo"
	case CarrierLatamCargo:
		return "latam_cargo"
	default:
		return "other"
	}
}

// RequiresAgency reports whether shipments must be dropped at an agency.
func (c Carrier) RequiresAgency() bool {
	switch c {
	case CarrierJadlog, CarrierAzulCargo, CarrierLatamCargo:
		return true
	default:
		return false
	}
}

// CompanyID returns the Melhor Envio company id used to list agencies,
// or 0 when the carrier has no agencies.
func (c Carrier) CompanyID() int {
	switch c {
	case CarrierJadlog:
		return 2
	case CarrierLatamCargo:
		return 6
	case CarrierAzulCargo:
		return 9
	default:
		return 0
	}
}

// InsuranceRequired reports whether a declared insurance value must be sent.
// Correios honours the merchant setting; every other carrier requires it.
func InsuranceRequired(setting bool, service int) bool {
	if Classify(service) == CarrierCorreios {
		return setting
	}
	return true
}
