// Package invoice extracts structured order details from order/invoice
// HTML pages.
package invoice

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/jmylchreest/invoicekit/pkg/document"
)

// Labels of the order summary rows the parser requires.
const (
	LabelSubtotal            = "Item(s) Subtotal:"
	LabelTax                 = "Estimated tax to be collected:"
	LabelPreTaxTotal         = "Total before tax:"
	LabelGrandTotal          = "Grand Total:"
	LabelShippingAndHandling = "Shipping & Handling:"
)

// Tolerance is the largest difference allowed when cross-checking totals.
const Tolerance = 0.01

const (
	selAmountRow      = ".od-line-item-row"
	selAmountLabel    = ".od-line-item-row-label"
	selAmountContent  = ".od-line-item-row-content"
	selOrderDate      = `[data-component="orderDate"]`
	selPaymentMethod  = ".pmts-payments-instrument-detail-box-paystationpaymentmethod"
	selShippingAddr   = `[data-component="shippingAddress"]`
	selItems          = `[data-component="purchasedItems"] .a-fixed-left-grid`
	selItemTitle      = `[data-component="itemTitle"] a`
	selItemSeller     = `[data-component="orderedMerchant"] span`
	selItemSupplier   = `[data-component="supplierOfRecord"] span`
	selItemPrice      = `[data-component="unitPrice"] .a-offscreen`
	selItemQuantity   = ".od-item-view-qty span"
	shippingAddrTitle = "Ship to"
)

// dateLayouts are tried before falling back to dateparse.
var dateLayouts = []string{"January 2, 2006", "Jan 2, 2006"}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	numberRegex     = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)`)
	integerRegex    = regexp.MustCompile(`^[-+]?\d+`)
	soldByRegex     = regexp.MustCompile(`^Sold by:\s*`)
	suppliedByRegex = regexp.MustCompile(`^Supplied by:\s*`)
)

// Parser extracts OrderDetail values from parsed order pages.
// A Parser is safe for concurrent use.
type Parser struct {
	validate *validator.Validate
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Parse reads an HTML order page from r and extracts its details.
func Parse(r io.Reader) (*OrderDetail, error) {
	return NewParser().ParseReader(r)
}

// ParseReader parses r as HTML and extracts its order details.
func (p *Parser) ParseReader(r io.Reader) (*OrderDetail, error) {
	root, err := document.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return p.ParseDocument(goquery.NewDocumentFromNode(root))
}

// ParseDocument extracts order details from an already parsed document.
func (p *Parser) ParseDocument(doc *goquery.Document) (*OrderDetail, error) {
	amounts, discounts := parseAmounts(doc)

	detail := &OrderDetail{
		SchemaVersion: SchemaVersion,
		Currency:      CurrencyUSD,
		Discounts:     discounts,
	}

	required := []struct {
		label string
		dst   *float64
	}{
		{LabelSubtotal, &detail.Subtotal},
		{LabelTax, &detail.Tax},
		{LabelPreTaxTotal, &detail.PreTaxTotal},
		{LabelGrandTotal, &detail.GrandTotal},
		{LabelShippingAndHandling, &detail.ShippingAndHandling},
	}
	for _, r := range required {
		amount, ok := amounts[r.label]
		if !ok {
			return nil, parseErrorf("amounts", "amount for %q not found", r.label)
		}
		*r.dst = amount
	}

	if err := checkTotals(detail); err != nil {
		return nil, err
	}

	var err error
	if detail.Date, err = parseOrderDate(doc); err != nil {
		return nil, err
	}
	if detail.PaymentMethod, err = parsePaymentMethod(doc); err != nil {
		return nil, err
	}
	if detail.Items, err = parseItems(doc); err != nil {
		return nil, err
	}
	if detail.ShippingAddress, err = parseShippingAddress(doc); err != nil {
		return nil, err
	}

	if err := p.validate.Struct(detail); err != nil {
		return nil, validationError(err)
	}
	return detail, nil
}

// parseAmounts reads the order summary. Negative rows are discounts, kept in
// page order; the rest are keyed by label.
func parseAmounts(doc *goquery.Document) (map[string]float64, []Discount) {
	amounts := make(map[string]float64)
	discounts := []Discount{}

	doc.Find(selAmountRow).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(selAmountLabel).First().Text())
		amountText := strings.TrimSpace(row.Find(selAmountContent).First().Text())
		if label == "" || amountText == "" {
			return
		}
		amount, ok := parseMoney(amountText)
		if !ok {
			return
		}
		if amount < 0 {
			discounts = append(discounts, Discount{Description: label, Amount: amount})
			return
		}
		amounts[label] = amount
	})

	return amounts, discounts
}

// checkTotals cross-checks the summary: the pre-tax total must equal
// subtotal + shipping + discounts, and the grand total must equal
// pre-tax total + tax.
func checkTotals(d *OrderDetail) error {
	expectedPreTax := d.Subtotal + d.ShippingAndHandling + d.DiscountTotal()
	if math.Abs(d.PreTaxTotal-expectedPreTax) > Tolerance {
		return parseErrorf("preTaxTotal", "total before tax validation failed: expected %.2f, got %.2f",
			expectedPreTax, d.PreTaxTotal)
	}

	expectedGrand := d.Tax + d.PreTaxTotal
	if math.Abs(d.GrandTotal-expectedGrand) > Tolerance {
		return parseErrorf("grandTotal", "grand total validation failed: expected %.2f, got %.2f",
			expectedGrand, d.GrandTotal)
	}
	return nil
}

func parseOrderDate(doc *goquery.Document) (time.Time, error) {
	el := doc.Find(selOrderDate).First()
	if el.Length() == 0 {
		return time.Time{}, parseErrorf("date", "order date element not found")
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return time.Time{}, parseErrorf("date", "order date text not found")
	}
	for _, layout := range dateLayouts {
		if date, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return date, nil
		}
	}
	date, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, parseErrorf("date", "invalid date: %s", text)
	}
	return date.UTC(), nil
}

func parsePaymentMethod(doc *goquery.Document) (string, error) {
	el := doc.Find(selPaymentMethod).First()
	if el.Length() == 0 {
		return "", parseErrorf("paymentMethod", "payment method element not found")
	}
	text := collapseWhitespace(el.Text())
	if text == "" {
		return "", parseErrorf("paymentMethod", "payment method text not found")
	}
	return text, nil
}

func parseShippingAddress(doc *goquery.Document) ([]string, error) {
	el := doc.Find(selShippingAddr).First()
	if el.Length() == 0 {
		return nil, parseErrorf("shippingAddress", "shipping address element not found")
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return nil, parseErrorf("shippingAddress", "shipping address text not found")
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == shippingAddrTitle {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, parseErrorf("shippingAddress", "no shipping address lines found")
	}
	return lines, nil
}

func parseItems(doc *goquery.Document) ([]ItemDetail, error) {
	items := []ItemDetail{}
	var err error

	doc.Find(selItems).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var item ItemDetail
		item, err = parseItem(s)
		if err != nil {
			return false
		}
		items = append(items, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func parseItem(s *goquery.Selection) (ItemDetail, error) {
	description := strings.TrimSpace(s.Find(selItemTitle).First().Text())
	if description == "" {
		return ItemDetail{}, parseErrorf("items", "item description not found")
	}

	priceText := strings.TrimSpace(s.Find(selItemPrice).First().Text())
	if priceText == "" {
		return ItemDetail{}, parseErrorf("items", "item price not found for %q", description)
	}
	price, ok := parseMoney(priceText)
	if !ok {
		return ItemDetail{}, parseErrorf("items", "item price not parseable as float: %s", priceText)
	}

	quantity := 1
	if qtyText := strings.TrimSpace(s.Find(selItemQuantity).First().Text()); qtyText != "" {
		m := integerRegex.FindString(qtyText)
		q, err := strconv.Atoi(m)
		if m == "" || err != nil {
			return ItemDetail{}, parseErrorf("items", "item quantity not parseable as integer: %s", qtyText)
		}
		quantity = q
	}

	return ItemDetail{
		Description: description,
		Seller:      soldByRegex.ReplaceAllString(collapseWhitespace(s.Find(selItemSeller).First().Text()), ""),
		Supplier:    suppliedByRegex.ReplaceAllString(collapseWhitespace(s.Find(selItemSupplier).First().Text()), ""),
		Quantity:    quantity,
		ItemPrice:   price,
	}, nil
}

// parseMoney parses the leading number of s after dropping "$" and ",".
// Trailing text such as a currency code is ignored.
func parseMoney(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	m := numberRegex.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// collapseWhitespace folds compatibility characters such as no-break spaces
// (NFKC) and then squeezes runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return parseErrorf(fe.Field(), "failed %q validation (value %v)", fe.Tag(), fe.Value())
	}
	return fmt.Errorf("validating order detail: %w", err)
}
