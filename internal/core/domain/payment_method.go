package domain

// PaymentMethod identifies how money entered or left the register.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "efectivo"
	MethodNequi        PaymentMethod = "nequi"
	MethodDaviplata    PaymentMethod = "daviplata"
	MethodTransfer     PaymentMethod = "transferencia"
	MethodDebitCard    PaymentMethod = "tarjeta_debito"
	MethodCreditCard   PaymentMethod = "tarjeta_credito"
	MethodSistecredito PaymentMethod = "sistecredito"
	MethodAddi         PaymentMethod = "addi"
)

// MethodGroup buckets payment methods by whether they touch the physical drawer.
type MethodGroup string

const (
	GroupCash      MethodGroup = "CASH"
	GroupDigital   MethodGroup = "DIGITAL"
	GroupFinancier MethodGroup = "FINANCIER"
)

// PaymentMethods lists every supported method in display order.
var PaymentMethods = []PaymentMethod{
	MethodCash,
	MethodNequi,
	MethodDaviplata,
	MethodTransfer,
	MethodDebitCard,
	MethodCreditCard,
	MethodSistecredito,
	MethodAddi,
}

// IsValid reports whether m is a known method.
func (m PaymentMethod) IsValid() bool {
	_, ok := methodGroups[m]
	return ok
}

// Group returns the bucket the method belongs to. Unknown methods report "".
func (m PaymentMethod) Group() MethodGroup {
	return methodGroups[m]
}

// IsCash reports whether the method moves physical cash in the drawer.
func (m PaymentMethod) IsCash() bool {
	return m.Group() == GroupCash
}

var methodGroups = map[PaymentMethod]MethodGroup{
	MethodCash:         GroupCash,
	MethodNequi:        GroupDigital,
	MethodDaviplata:    GroupDigital,
	MethodTransfer:     GroupDigital,
	MethodDebitCard:    GroupDigital,
	MethodCreditCard:   GroupDigital,
	MethodSistecredito: GroupFinancier,
	MethodAddi:         GroupFinancier,
}
