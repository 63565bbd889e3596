package invoice

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountRow(label, amount string) string {
	return `<div class="od-line-item-row"><div class="od-line-item-row-label"><span>` + label +
		`</span></div><div class="od-line-item-row-content"><span>` + amount + `</span></div></div>`
}

const pageHead = `<!DOCTYPE html><html><head><title>Order Details</title>
<script>window.ue_t0 = +new Date();</script></head><body>
<!-- order page -->
<div data-component="orderDate"><span>November 3, 2024</span></div>
<div class="pmts-payments-instrument-detail-box-paystationpaymentmethod"><img alt="Visa"> <span>Visa</span>
    <span>ending in 1234</span></div>
<div data-component="shippingAddress">
<h5>Ship to</h5>
<ul>
<li>Jane Doe</li>
<li>123 Main St</li>
<li>Springfield, IL 62701</li>
</ul>
</div>
<div data-component="purchasedItems">
 <div class="a-fixed-left-grid">
   <div data-component="itemTitle"><a href="/dp/1">USB-C Cable</a></div>
   <div data-component="orderedMerchant"><span>Sold by:
      Cable Co</span></div>
   <div data-component="supplierOfRecord"><span>Supplied by: Cable Co Ltd</span></div>
   <div data-component="unitPrice"><span class="a-price"><span class="a-offscreen">$9.99</span><span aria-hidden="true">$9.99</span></span></div>
   <div class="od-item-view-qty"><span>2</span></div>
 </div>
 <div class="a-fixed-left-grid">
   <div data-component="itemTitle"><a href="/dp/2">Laptop</a></div>
   <div data-component="unitPrice"><span class="a-offscreen">$1,010.00</span></div>
 </div>
</div>
`

func validSummary() string {
	return amountRow("Item(s) Subtotal:", "$1,029.98") +
		amountRow("Shipping &amp; Handling:", "$5.99") +
		amountRow("Free Shipping:", "-$5.99") +
		amountRow("Total before tax:", "$1,029.98") +
		amountRow("Estimated tax to be collected:", "$72.10") +
		amountRow("Grand Total:", "$1,102.08")
}

func page(summary string) string {
	return pageHead + summary + `</body></html>`
}

func TestParse_OrderPage(t *testing.T) {
	detail, err := Parse(strings.NewReader(page(validSummary())))
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, SchemaVersion, detail.SchemaVersion)
	assert.Equal(t, CurrencyUSD, detail.Currency)
	assert.Equal(t, time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC), detail.Date)
	assert.Equal(t, "Visa ending in 1234", detail.PaymentMethod)

	assert.InDelta(t, 1029.98, detail.Subtotal, 0.001)
	assert.InDelta(t, 5.99, detail.ShippingAndHandling, 0.001)
	assert.InDelta(t, 1029.98, detail.PreTaxTotal, 0.001)
	assert.InDelta(t, 72.10, detail.Tax, 0.001)
	assert.InDelta(t, 1102.08, detail.GrandTotal, 0.001)

	require.Len(t, detail.Discounts, 1)
	assert.Equal(t, "Free Shipping:", detail.Discounts[0].Description)
	assert.InDelta(t, -5.99, detail.Discounts[0].Amount, 0.001)

	require.Len(t, detail.Items, 2)
	assert.Equal(t, ItemDetail{
		Description: "USB-C Cable",
		Seller:      "Cable Co",
		Supplier:    "Cable Co Ltd",
		Quantity:    2,
		ItemPrice:   9.99,
	}, detail.Items[0])
	assert.Equal(t, "Laptop", detail.Items[1].Description)
	assert.Empty(t, detail.Items[1].Seller)
	assert.Empty(t, detail.Items[1].Supplier)
	assert.Equal(t, 1, detail.Items[1].Quantity, "quantity defaults to 1")
	assert.InDelta(t, 1010.0, detail.Items[1].ItemPrice, 0.001)

	assert.Equal(t, []string{"Jane Doe", "123 Main St", "Springfield, IL 62701"}, detail.ShippingAddress)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		field   string
		message string
	}{
		{
			name: "missing grand total",
			html: page(amountRow("Item(s) Subtotal:", "$10.00") +
				amountRow("Shipping &amp; Handling:", "$0.00") +
				amountRow("Total before tax:", "$10.00") +
				amountRow("Estimated tax to be collected:", "$1.00")),
			field:   "amounts",
			message: `amount for "Grand Total:" not found`,
		},
		{
			name: "pre-tax total mismatch",
			html: page(amountRow("Item(s) Subtotal:", "$10.00") +
				amountRow("Shipping &amp; Handling:", "$2.00") +
				amountRow("Total before tax:", "$10.00") +
				amountRow("Estimated tax to be collected:", "$1.00") +
				amountRow("Grand Total:", "$11.00")),
			field:   "preTaxTotal",
			message: "expected 12.00, got 10.00",
		},
		{
			name: "grand total mismatch",
			html: page(amountRow("Item(s) Subtotal:", "$10.00") +
				amountRow("Shipping &amp; Handling:", "$0.00") +
				amountRow("Total before tax:", "$10.00") +
				amountRow("Estimated tax to be collected:", "$1.00") +
				amountRow("Grand Total:", "$12.00")),
			field:   "grandTotal",
			message: "expected 11.00, got 12.00",
		},
		{
			name:    "missing order date",
			html:    strings.Replace(page(validSummary()), `data-component="orderDate"`, `data-component="other"`, 1),
			field:   "date",
			message: "order date element not found",
		},
		{
			name:    "unparseable order date",
			html:    strings.Replace(page(validSummary()), "November 3, 2024", "sometime soon", 1),
			field:   "date",
			message: "invalid date",
		},
		{
			name:    "missing payment method",
			html:    strings.Replace(page(validSummary()), "pmts-payments-instrument-detail-box-paystationpaymentmethod", "pmts-other", 1),
			field:   "paymentMethod",
			message: "payment method element not found",
		},
		{
			name:    "bad item price",
			html:    strings.Replace(page(validSummary()), `<span class="a-offscreen">$9.99</span>`, `<span class="a-offscreen">free</span>`, 1),
			field:   "items",
			message: "item price not parseable as float: free",
		},
		{
			name:    "bad item quantity",
			html:    strings.Replace(page(validSummary()), `<span>2</span>`, `<span>two</span>`, 1),
			field:   "items",
			message: "item quantity not parseable as integer: two",
		},
		{
			name:    "missing item title",
			html:    strings.Replace(page(validSummary()), `<a href="/dp/2">Laptop</a>`, ``, 1),
			field:   "items",
			message: "item description not found",
		},
		{
			name:    "address with only a heading",
			html:    strings.Replace(page(validSummary()), "<li>Jane Doe</li>\n<li>123 Main St</li>\n<li>Springfield, IL 62701</li>", "", 1),
			field:   "shippingAddress",
			message: "no shipping address lines found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := Parse(strings.NewReader(tt.html))
			require.Error(t, err)
			assert.Nil(t, detail)
			assert.True(t, errors.Is(err, ErrInvoice), "expected ErrInvoice, got %v", err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.field, perr.Field)
			assert.Contains(t, perr.Error(), tt.message)
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"-$5.99", -5.99, true},
		{" $0.00 ", 0, true},
		{"$12.50 USD", 12.5, true},
		{".5", 0.5, true},
		{"free", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMoney(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "Visa ending in 1234", collapseWhitespace(" Visa\u00a0ending  in\n\t1234 "))
	assert.Equal(t, "", collapseWhitespace("\u00a0 \n"))
}

func TestOrderDetail_DiscountTotal(t *testing.T) {
	d := &OrderDetail{Discounts: []Discount{{"a", -1.5}, {"b", -2.25}}}
	assert.InDelta(t, -3.75, d.DiscountTotal(), 0.0001)
	assert.Zero(t, (&OrderDetail{}).DiscountTotal())
}

func TestParseError(t *testing.T) {
	err := parseErrorf("items", "item %d broken", 3)
	assert.Equal(t, "items: item 3 broken", err.Error())
	assert.ErrorIs(t, err, ErrInvoice)

	assert.Equal(t, "plain", (&ParseError{Message: "plain"}).Error())
}
