package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/tair/storefront/internal/catalog/domain"
)

var printer = message.NewPrinter(language.English)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Currency renders amount in the given ISO currency, e.g. "$1,234.50"
func Currency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = domain.DefaultCurrency
	}

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}

	digits := printer.Sprint(number.Decimal(amount, number.Scale(scale)))
	if sym, ok := symbols[code]; ok {
		return sign + sym + digits
	}
	return sign + code + " " + digits
}

// PriceDisplay is the rendered price of a product
type PriceDisplay struct {
	Current  string `json:"current"`
	Original string `json:"original,omitempty"`
	Discount int    `json:"discountPercent,omitempty"`
}

// Price renders the current price and, when discounted, the struck-through
// original with the rounded discount percentage. ok is false without a price.
func Price(p *domain.Price) (PriceDisplay, bool) {
	if p == nil {
		return PriceDisplay{}, false
	}

	out := PriceDisplay{Current: Currency(p.Amount, p.Currency)}
	if p.Discounted() {
		out.Original = Currency(*p.OriginalAmount, p.Currency)
		out.Discount = int(math.Round((1 - p.Amount / *p.OriginalAmount) * 100))
	}
	return out, true
}

// Rating renders "4.6 (128 reviews)". A missing rating renders as "".
func Rating(rating *float64, reviews *int) string {
	if rating == nil {
		return ""
	}

	out := fmt.Sprintf("%.1f", *rating)
	if reviews != nil {
		noun := "reviews"
		if *reviews == 1 {
			noun = "review"
		}
		out += fmt.Sprintf(" (%s %s)", printer.Sprint(number.Decimal(*reviews)), noun)
	}
	return out
}

var inventoryLabels = map[domain.InventoryStatus]string{
	domain.InventoryInStock:    "In stock",
	domain.InventoryLowStock:   "Low stock",
	domain.InventoryOutOfStock: "Out of stock",
	domain.InventoryPreorder:   "Pre-order",
}

// InventoryLabel returns the label for a known status. Unknown statuses
// are not guessed at.
func InventoryLabel(status domain.InventoryStatus) (string, bool) {
	label, ok := inventoryLabels[domain.ParseInventoryStatus(string(status))]
	return label, ok
}

// Badges returns the product badges with "Featured" first for featured products
func Badges(p domain.Product) []string {
	out := make([]string, 0, len(p.Badges)+1)
	if p.Featured && !hasBadge(p.Badges, "Featured") {
		out = append(out, "Featured")
	}
	out = append(out, p.Badges...)
	return out
}

func hasBadge(badges []string, badge string) bool {
	for _, b := range badges {
		if strings.EqualFold(b, badge) {
			return true
		}
	}
	return false
}
