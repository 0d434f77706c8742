package medusa

import "github.com/shopspring/decimal"

// Region bundles a currency with the countries it serves. Sourced read-only
// from the commerce backend.
type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries"`
}

type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
}

type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id"`
	CurrencyCode      string             `json:"currency_code"`
	Email             string             `json:"email,omitempty"`
	Items             []LineItem         `json:"items"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	BillingAddress    *Address           `json:"billing_address,omitempty"`
	ShippingMethods   []ShippingMethod   `json:"shipping_methods"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
	Total             decimal.Decimal    `json:"total"`
	SubTotal          decimal.Decimal    `json:"subtotal"`
	ShippingTotal     decimal.Decimal    `json:"shipping_total"`
	TaxTotal          decimal.Decimal    `json:"tax_total"`
	PromoCodes        []string           `json:"promo_codes,omitempty"`
}

type LineItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Variant   *Variant        `json:"variant,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
}

type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku,omitempty"`
	InventoryQuantity int              `json:"inventory_quantity"`
	ManageInventory   bool             `json:"manage_inventory"`
	Prices            []Price          `json:"prices,omitempty"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price,omitempty"`
	Product           *Product         `json:"product,omitempty"`
}

type Price struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

// CalculatedPrice carries the backend's price resolution for the active
// region: the calculated amount reflects promotions, the original does not.
type CalculatedPrice struct {
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	CurrencyCode     string          `json:"currency_code"`
}

type Product struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Handle            string    `json:"handle"`
	Description       string    `json:"description,omitempty"`
	Thumbnail         string    `json:"thumbnail,omitempty"`
	ShippingProfileID string    `json:"shipping_profile_id,omitempty"`
	Variants          []Variant `json:"variants,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type ShippingOption struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	PriceType         string          `json:"price_type"`
	Amount            decimal.Decimal `json:"amount"`
	ShippingProfileID string          `json:"shipping_profile_id"`
}

type ShippingMethod struct {
	ID               string          `json:"id"`
	ShippingOptionID string          `json:"shipping_option_id"`
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"`
}

type PaymentCollection struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
}

type PaymentSession struct {
	ID         string         `json:"id"`
	ProviderID string         `json:"provider_id"`
	Status     string         `json:"status"`
	Data       map[string]any `json:"data,omitempty"`
}

type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID           string          `json:"id"`
	DisplayID    int             `json:"display_id"`
	Status       string          `json:"status"`
	Email        string          `json:"email"`
	CurrencyCode string          `json:"currency_code"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

// CartPatch carries optional cart mutations; nil fields are left untouched.
type CartPatch struct {
	RegionID        *string  `json:"region_id,omitempty"`
	Email           *string  `json:"email,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
	PromoCodes      []string `json:"promo_codes,omitempty"`
}

// IsEmpty reports whether applying the patch would be a no-op.
func (p CartPatch) IsEmpty() bool {
	return p.RegionID == nil &&
		p.Email == nil &&
		p.ShippingAddress == nil &&
		p.BillingAddress == nil &&
		len(p.PromoCodes) == 0
}
