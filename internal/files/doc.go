// Package files finds vendor input files and works out which vendor wrote
// each one from its name.
//
// Recognized names:
//
//	Hanweck_CME_Settlement_FUT_20190321.csv   hanweck
//	OZN_settlement_190321.txt                 xtp
//	10y_2019-03-21_EOD_raw_e.csv, *eod*.txt   cme
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	inputs, ignored, err := discovery.FindVendorFiles("", false)
package files
