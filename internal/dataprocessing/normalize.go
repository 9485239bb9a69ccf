package dataprocessing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// excelEpoch is the spreadsheet serial date origin. Day 1 of the historical
// 1900 date system lands on 1899-12-31, and the inherited lotus leap-year
// bug shifts everything after 1900-02-28 by one, so 1899-12-30 is the epoch
// that turns modern serials into correct dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is the serial for 9999-12-31.
const maxExcelSerial = 2958465

var (
	amountScrub = strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "", "　", "")
	datePattern = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
)

// NormalizeAmount converts raw cell content into whole yen. Currency
// symbols, thousands separators, whitespace and full-width digits are
// stripped; accounting parentheses mean negative. Anything non-numeric
// yields nil, which is distinct from an explicit zero.
func NormalizeAmount(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = width.Narrow.String(s)
	s = amountScrub.Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		f = -f
	}

	v := int64(math.Round(f))
	return &v
}

// NormalizeDate converts raw cell content into an ISO YYYY-MM-DD string.
// Accepted inputs are spreadsheet date serials and Y-M-D, Y/M/D or Y.M.D
// strings; both are normalized with zero padding. Unparseable non-empty
// content is passed through unchanged so nothing is silently dropped.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = width.Narrow.String(s)

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= 1 && serial <= maxExcelSerial {
			return SerialToDate(int(serial))
		}
		return raw
	}

	if m := datePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}

	return raw
}

// SerialToDate converts a spreadsheet serial day count to YYYY-MM-DD.
func SerialToDate(serial int) string {
	return excelEpoch.AddDate(0, 0, serial).Format("2006-01-02")
}
