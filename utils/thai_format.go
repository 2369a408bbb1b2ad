package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var thaiMonths = []string{
	"มกราคม",
	"กุมภาพันธ์",
	"มีนาคม",
	"เมษายน",
	"พฤษภาคม",
	"มิถุนายน",
	"กรกฎาคม",
	"สิงหาคม",
	"กันยายน",
	"ตุลาคม",
	"พฤศจิกายน",
	"ธันวาคม",
}

// FormatThaiDate returns the date formatted using Thai month names and Buddhist Era year.
func FormatThaiDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	localTime := t.In(time.Local)
	monthIndex := int(localTime.Month()) - 1
	if monthIndex < 0 || monthIndex >= len(thaiMonths) {
		return localTime.Format("02/01/2006")
	}

	return strconv.Itoa(localTime.Day()) + " " + thaiMonths[monthIndex] + " " + strconv.Itoa(localTime.Year()+543)
}

// FormatThaiDatePtr returns Thai formatted date for pointer values.
func FormatThaiDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatThaiDate(*t)
}

// ParseBackendTime parses the timestamp layouts the backend has used over time.
func ParseBackendTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatBaht renders an amount as "1,234.50 บาท", or "-" when unknown.
func FormatBaht(amount *float64) string {
	if amount == nil {
		return "-"
	}
	fixed := decimal.NewFromFloat(*amount).StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var grouped strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(ch)
	}

	out := grouped.String() + "." + frac + " บาท"
	if negative {
		out = "-" + out
	}
	return out
}
