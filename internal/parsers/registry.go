// Package parsers maps each vendor to its file parser.
package parsers

import (
	"fmt"

	"eodingest/internal/dataprocessing"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/parsers/cme"
	"eodingest/internal/parsers/hanweck"
	"eodingest/internal/parsers/xtp"
	"eodingest/pkg/contracts/domain"
)

// ForVendor returns the parser for a vendor.
func ForVendor(v domain.Vendor) (dataprocessing.Parser, error) {
	switch v {
	case domain.VendorCME:
		return cme.NewParser(), nil
	case domain.VendorHanweck:
		return hanweck.NewParser(), nil
	case domain.VendorXTP:
		return xtp.NewParser(), nil
	}
	return nil, apperrors.NewAppValidationError(fmt.Sprintf("no parser for vendor %q", v))
}
