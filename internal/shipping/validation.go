// Package shipping holds the single shipping-profile coverage check used by
// both the pre-submit checkout endpoint and server-side cart completion.
package shipping

import (
	"fmt"
	"sort"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"

	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

// MissingProfiles returns the shipping-profile ids required by cart items that
// no selected shipping method covers. Coverage is resolved by matching each
// selected method's shipping option against the option list, then reading the
// option's profile. Pure set membership; the result is sorted for stable
// error messages.
func MissingProfiles(items []medusa.LineItem, methods []medusa.ShippingMethod, options []medusa.ShippingOption) []string {
	required := map[string]struct{}{}
	for _, item := range items {
		if item.Variant == nil || item.Variant.Product == nil {
			continue
		}
		if profileID := item.Variant.Product.ShippingProfileID; profileID != "" {
			required[profileID] = struct{}{}
		}
	}

	profileByOption := map[string]string{}
	for _, option := range options {
		profileByOption[option.ID] = option.ShippingProfileID
	}

	covered := map[string]struct{}{}
	for _, method := range methods {
		if profileID := profileByOption[method.ShippingOptionID]; profileID != "" {
			covered[profileID] = struct{}{}
		}
	}

	var missing []string
	for profileID := range required {
		if _, ok := covered[profileID]; !ok {
			missing = append(missing, profileID)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate wraps MissingProfiles into the error surfaced to checkout callers.
func Validate(items []medusa.LineItem, methods []medusa.ShippingMethod, options []medusa.ShippingOption) error {
	missing := MissingProfiles(items, methods, options)
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("missing shipping method for %d shipping profile(s)", len(missing))).
		WithDetails(map[string]any{
			"missing_profile_ids": missing,
		})
}
