// Package offset computes relative date/time offsets such as "+3h" or "-2d"
// against local minute-precision timestamps, and tracks which field of an
// ordered chain each offset is relative to.
package offset

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrInvalidFormat    = errors.New("invalid offset format")
	ErrInvalidTimestamp = errors.New("invalid local timestamp")
)

var tokenPattern = regexp.MustCompile(`^([+-]?)(\d+)([smhdwMqy])$`)

// Locale selects the language of unit names in offset labels.
type Locale string

const (
	LocaleVietnamese Locale = "vi"
	LocaleEnglish    Locale = "en"
)

type unitInfo struct {
	duration time.Duration
	names    map[Locale]string
}

// Month, quarter and year are fixed 30/90/365-day spans, not calendar arithmetic.
var units = map[byte]unitInfo{
	's': {time.Second, map[Locale]string{LocaleVietnamese: "giây", LocaleEnglish: "second"}},
	'm': {time.Minute, map[Locale]string{LocaleVietnamese: "phút", LocaleEnglish: "minute"}},
	'h': {time.Hour, map[Locale]string{LocaleVietnamese: "giờ", LocaleEnglish: "hour"}},
	'd': {24 * time.Hour, map[Locale]string{LocaleVietnamese: "ngày", LocaleEnglish: "day"}},
	'w': {7 * 24 * time.Hour, map[Locale]string{LocaleVietnamese: "tuần", LocaleEnglish: "week"}},
	'M': {30 * 24 * time.Hour, map[Locale]string{LocaleVietnamese: "tháng", LocaleEnglish: "month"}},
	'q': {90 * 24 * time.Hour, map[Locale]string{LocaleVietnamese: "quý", LocaleEnglish: "quarter"}},
	'y': {365 * 24 * time.Hour, map[Locale]string{LocaleVietnamese: "năm", LocaleEnglish: "year"}},
}

// Units lists the unit symbols in ascending order of duration.
const Units = "smhdwMqy"

// Offset is a parsed offset token.
type Offset struct {
	Sign   int // +1 or -1
	Amount int64
	Unit   byte
}

// Parse validates token against the offset grammar.
func Parse(token string) (Offset, error) {
	match := tokenPattern.FindStringSubmatch(token)
	if match == nil {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalidFormat, token)
	}

	amount, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return Offset{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, token, err)
	}

	unit := match[3][0]
	info := units[unit]
	if amount > math.MaxInt64/info.duration.Milliseconds() {
		return Offset{}, fmt.Errorf("%w: %q overflows", ErrInvalidFormat, token)
	}

	sign := 1
	if match[1] == "-" {
		sign = -1
	}

	return Offset{Sign: sign, Amount: amount, Unit: unit}, nil
}

// Milliseconds returns the signed span of the offset.
func (o Offset) Milliseconds() int64 {
	return int64(o.Sign) * o.Amount * units[o.Unit].duration.Milliseconds()
}

// String renders the canonical token, always with an explicit sign.
func (o Offset) String() string {
	sign := "+"
	if o.Sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d%c", sign, o.Amount, o.Unit)
}

// Label renders "<sign> <amount> <unit name>" in the given locale.
func (o Offset) Label(locale Locale) string {
	sign := "+"
	if o.Sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s %d %s", sign, o.Amount, unitName(o.Unit, locale))
}

func unitName(unit byte, locale Locale) string {
	names := units[unit].names
	if name, ok := names[locale]; ok {
		return name
	}
	return names[LocaleVietnamese]
}

// CustomToken builds a positive token from the custom offset form.
// Amount must be within 1..999.
func CustomToken(amount int, unit string) (string, error) {
	if amount < 1 || amount > 999 {
		return "", fmt.Errorf("%w: amount %d out of range 1..999", ErrInvalidFormat, amount)
	}
	if len(unit) != 1 {
		return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidFormat, unit)
	}
	if _, ok := units[unit[0]]; !ok {
		return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidFormat, unit)
	}
	return fmt.Sprintf("+%d%s", amount, unit), nil
}
