package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Sample vendor files, all for the 2019-03-21 snapshot.
const (
	// CMEFuturesBadPrice has one ZN section with four rows; the third
	// (line 6) has an unreadable settlement.
	CMEFuturesBadPrice = `# FILE DATE: 2019-03-21
# PRODUCT: ZN
Put/Call,Contract Year,Contract Month,Strike Price,Settlement
F,2019,6,,123.515625
F,2019,9,,123.25
F,2019,12,,12x.5
F,2020,3,,122.75
`

	// CMEOptions is a clean current-layout file: two OZN options and one
	// ZN future.
	CMEOptions = `# TRADE DATE: 03/21/2019
# PRODUCT: OZN
Put/Call,Contract Year,Contract Month,Strike Price,Settlement,Total Volume,Open Interest,Last Trade Date
P,2019,5,120.25,0.578125,800,3100,2019-04-26
C,2019,5,120.5,1.234375,1200,5400,2019-04-26
# PRODUCT: ZN
Put/Call,Contract Year,Contract Month,Strike Price,Settlement,Total Volume,Open Interest,Last Trade Date
F,2019,6,,123.515625,150000,300000,2019-06-19
`

	HanweckHeader = "tradeDate,tickerElec,tickerExch,secType,instType,matMY,matDate,expDate,putCall,Strike,SettlePrice,PrevDayVol,PrevDayOI,desc_\n"

	// HanweckCapture has five rows. Row 5 claims OPTION without strike or
	// right; row 6 claims FUTURE but carries both.
	HanweckCapture = HanweckHeader +
		"20190321,OZN,OZNK9 C12050,OOF,OPTION,201905,,20190426,C,120.5,1.234375,1200,5400,10Y NOTE OPT\n" +
		"20190321,OZN,OZNK9 P12025,OOF,OPTION,201905,,20190426,P,120.25,0.578125,800,3100,\n" +
		"20190321,ZN,ZNM9,FUT,FUTURE,201906,20190619,,,,123.515625,150000,300000,10Y NOTE\n" +
		"20190321,OZN,OZNK9,OOF,OPTION,201905,,20190426,,,0.5,10,20,\n" +
		"20190321,OZN,OZNK9 C12100,FUT,FUTURE,201905,,20190426,C,121,0.25,5,6,\n"

	// XTPDump has four data lines; line 4 has a strike of 999.
	XTPDump = `# DATE: 2019-03-21
OZNK19_26C_120.5 XCBT OZN 14:59:58 0 0 0 0 0 0 0 1.234375 3
OZN K19 P 120.25 0,578125 15:00:02
OZNK19C999   1.0  15:00:02
ZNM19 | 123.515625
`

	// XTPUndated carries no date; the snapshot comes from the file name or
	// the caller.
	XTPUndated = `OZNK19C120.5 1.234375 15:00:02
ZNM19 123.515625
`
)

// WriteFile writes content to dir/name, creating parent directories, and
// returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
