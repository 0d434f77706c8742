// Package pricing derives display prices from variant price data. Price
// resolution itself happens in the commerce backend; this package only picks
// the entry matching the active currency and formats it for rendering.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

// Unavailable is the canonical fallback rendered when a variant carries no
// price resolvable for the requested currency. Call sites must not inline
// their own copy of this string.
const Unavailable = "Price unavailable"

// currencyOverrides forces a display currency for specific product handles
// where the upstream catalog carries mispriced entries. Data-quality patch,
// not policy; entries should disappear as the catalog is fixed.
var currencyOverrides = map[string]string{
	"heritage-seed-collection": "eur",
}

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// VariantPrice is the reconciled display price for one variant.
type VariantPrice struct {
	Calculated   decimal.Decimal `json:"calculated"`
	Original     decimal.Decimal `json:"original"`
	CurrencyCode string          `json:"currency_code"`
	Discounted   bool            `json:"discounted"`
}

// ForVariant selects the variant's price in the requested currency. The
// second return is false when no entry matches, in which case callers render
// Unavailable instead of failing the page.
func ForVariant(variant *medusa.Variant, currencyCode string) (*VariantPrice, bool) {
	if variant == nil {
		return nil, false
	}
	currency := normalizeCurrency(variant, currencyCode)

	if cp := variant.CalculatedPrice; cp != nil && strings.EqualFold(cp.CurrencyCode, currency) {
		calculated := cp.CalculatedAmount
		original := cp.OriginalAmount
		if original.IsZero() {
			original = calculated
		}
		return &VariantPrice{
			Calculated:   calculated,
			Original:     original,
			CurrencyCode: strings.ToLower(cp.CurrencyCode),
			Discounted:   calculated.LessThan(original),
		}, true
	}

	for _, price := range variant.Prices {
		if strings.EqualFold(price.CurrencyCode, currency) {
			return &VariantPrice{
				Calculated:   price.Amount,
				Original:     price.Amount,
				CurrencyCode: strings.ToLower(price.CurrencyCode),
			}, true
		}
	}
	return nil, false
}

// Format renders a reconciled price, or the Unavailable fallback for nil.
func Format(price *VariantPrice) string {
	if price == nil {
		return Unavailable
	}
	return FormatAmount(price.Calculated, price.CurrencyCode)
}

// FormatAmount renders an amount in the given currency. Unknown currencies
// are suffixed with their uppercase code.
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	code := strings.ToLower(currencyCode)
	fixed := amount.StringFixed(2)
	if symbol, ok := currencySymbols[code]; ok {
		return symbol + fixed
	}
	return fixed + " " + strings.ToUpper(code)
}

func normalizeCurrency(variant *medusa.Variant, currencyCode string) string {
	if variant.Product != nil {
		if forced, ok := currencyOverrides[strings.ToLower(variant.Product.Handle)]; ok {
			return forced
		}
	}
	return strings.ToLower(currencyCode)
}
