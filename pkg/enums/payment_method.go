package enums

import "slices"

// PaymentMethod describes how a tender was handed over at the till.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodQR   PaymentMethod = "QR"
)

var paymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodQR}

func (p PaymentMethod) String() string { return string(p) }

// IsValid requires the canonical upper-case spelling.
func (p PaymentMethod) IsValid() bool { return slices.Contains(paymentMethods, p) }

// ParsePaymentMethod accepts any casing, e.g. "qr".
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse("payment method", value, paymentMethods)
}
