package medusa

import pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"

func newCompletionError(message string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message)
}
