package invoice

import "time"

// SchemaVersion is the version of the OrderDetail layout.
const SchemaVersion = "0.1.0"

// Currency identifies the currency of every amount in an OrderDetail.
type Currency string

// CurrencyUSD is the only currency order pages are parsed in today.
const CurrencyUSD Currency = "USD"

// OrderDetail is the structured content of an order-detail page.
type OrderDetail struct {
	SchemaVersion       string       `json:"schemaVersion" yaml:"schemaVersion" validate:"required" description:"Version of this record layout"`
	Date                time.Time    `json:"date" yaml:"date" description:"Order date (UTC midnight)"`
	PaymentMethod       string       `json:"paymentMethod" yaml:"paymentMethod" validate:"required" description:"Payment instrument as shown on the page"`
	Currency            Currency     `json:"currency" yaml:"currency" validate:"required" description:"ISO 4217 code of every amount"`
	Subtotal            float64      `json:"subtotal" yaml:"subtotal" validate:"gte=0" description:"Item(s) subtotal"`
	Tax                 float64      `json:"tax" yaml:"tax" validate:"gte=0"`
	PreTaxTotal         float64      `json:"preTaxTotal" yaml:"preTaxTotal" validate:"gte=0" description:"Subtotal plus shipping plus discounts"`
	GrandTotal          float64      `json:"grandTotal" yaml:"grandTotal" validate:"gte=0" description:"Total before tax plus tax"`
	ShippingAndHandling float64      `json:"shippingAndHandling" yaml:"shippingAndHandling" validate:"gte=0"`
	Discounts           []Discount   `json:"discounts" yaml:"discounts" validate:"dive"`
	Items               []ItemDetail `json:"items" yaml:"items" validate:"dive"`
	ShippingAddress     []string     `json:"shippingAddress" yaml:"shippingAddress" validate:"min=1,dive,required" description:"Address lines, recipient first"`
}

// Discount is a negative line in the order summary, e.g. a promotion.
type Discount struct {
	Description string  `json:"description" yaml:"description" validate:"required"`
	Amount      float64 `json:"amount" yaml:"amount" validate:"lt=0" description:"Negative amount"`
}

// ItemDetail is one purchased item.
type ItemDetail struct {
	Description string  `json:"description" yaml:"description" validate:"required"`
	Seller      string  `json:"seller,omitempty" yaml:"seller,omitempty"`
	Supplier    string  `json:"supplier,omitempty" yaml:"supplier,omitempty"`
	Quantity    int     `json:"quantity" yaml:"quantity" validate:"gte=0"`
	ItemPrice   float64 `json:"itemPrice" yaml:"itemPrice"`
}

// DiscountTotal returns the sum of all discount amounts (a value <= 0).
func (o *OrderDetail) DiscountTotal() float64 {
	total := 0.0
	for _, d := range o.Discounts {
		total += d.Amount
	}
	return total
}
