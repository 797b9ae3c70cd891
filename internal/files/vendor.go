package files

import (
	"path/filepath"
	"regexp"

	"eodingest/pkg/contracts/domain"
)

// Checked in order; the Hanweck pattern must win over the CME one because
// Hanweck names contain "CME".
var vendorPatterns = []struct {
	vendor  domain.Vendor
	pattern *regexp.Regexp
}{
	{domain.VendorHanweck, regexp.MustCompile(`(?i)^hanweck.*\.(csv|txt)$`)},
	{domain.VendorXTP, regexp.MustCompile(`(?i)^[a-z0-9]+_settlement_\d{6}\.txt$`)},
	{domain.VendorXTP, regexp.MustCompile(`(?i)^xtp.*\.txt$`)},
	{domain.VendorCME, regexp.MustCompile(`(?i)^\d+y_\d{4}-\d{2}-\d{2}_eod_raw_[a-z]+\.(csv|txt)$`)},
	{domain.VendorCME, regexp.MustCompile(`(?i)(^|[_\-.])(cme|eod)([_\-.]|$).*\.(csv|txt)$`)},
}

// InferVendor guesses the vendor from a file name. Directories in path are
// ignored.
func InferVendor(path string) (domain.Vendor, bool) {
	name := filepath.Base(path)
	for _, p := range vendorPatterns {
		if p.pattern.MatchString(name) {
			return p.vendor, true
		}
	}
	return "", false
}
