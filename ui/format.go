package ui

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Price formats a USD price: 2 decimals from $1 up, 4 decimals below.
func Price(value float64) string {
	if value >= 1 {
		return "$" + grouped(value, 2, false)
	}
	return "$" + grouped(value, 4, false)
}

// Percent formats a 24h change with an explicit plus sign for non-negative values.
func Percent(value float64) string {
	s := decimal.NewFromFloat(value).StringFixed(2)
	if value >= 0 && !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// MarketCap abbreviates to billions or millions, otherwise groups digits.
func MarketCap(value float64) string {
	d := decimal.NewFromFloat(value)
	if value >= 1_000_000_000 {
		return d.Div(decimal.NewFromInt(1_000_000_000)).StringFixed(2) + "B"
	}
	if value >= 1_000_000 {
		return d.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + "M"
	}
	return grouped(value, 3, true)
}

// Volume groups digits without abbreviation.
func Volume(value float64) string {
	return grouped(value, 3, true)
}

// grouped rounds value to places decimals and inserts thousands separators
// in the integer part. With trim set, trailing fractional zeros are dropped.
func grouped(value float64, places int32, trim bool) string {
	d := decimal.NewFromFloat(value)
	negative := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac, _ := strings.Cut(s, ".")
	if trim {
		frac = strings.TrimRight(frac, "0")
	}

	var b strings.Builder
	if negative && strings.Trim(intPart+frac, "0") != "" {
		b.WriteString("-")
	}
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		b.WriteString(printer.Sprintf("%d", n))
	} else {
		// beyond int64; leave ungrouped
		b.WriteString(intPart)
	}
	if frac != "" {
		b.WriteString(".")
		b.WriteString(frac)
	}
	return b.String()
}
