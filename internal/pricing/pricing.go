// Package pricing считает длительность аренды, проверяет диапазон дат и итоговую стоимость.
// Пакет без побочных эффектов: «сегодня» всегда передаёт вызывающий.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRange  = errors.New("pricing: end date before start date")
	ErrRangeTooShort = errors.New("pricing: booking period too short")
	ErrRangeTooLong  = errors.New("pricing: booking period too long")
	ErrStartInPast   = errors.New("pricing: start date in the past")
	ErrInvalidPrice  = errors.New("pricing: invalid price")
)

// Policy — допустимая длина брони в днях (включительно).
type Policy struct {
	MinDays int
	MaxDays int
}

// Day обрезает время до календарной даты (полночь UTC) в локации t.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DurationDays считает дни аренды с учётом обоих концов: (end-start)+1.
func DurationDays(start, end time.Time) (int, error) {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return 0, ErrInvalidRange
	}
	days := int(e.Sub(s)/(24*time.Hour)) + 1
	if days < 1 {
		days = 1
	}
	return days, nil
}

// ValidateRange проверяет диапазон против лимитов и возвращает длительность.
func ValidateRange(start, end time.Time, maxDays, minDays int, today time.Time) (int, error) {
	days, err := DurationDays(start, end)
	if err != nil {
		return 0, err
	}
	if days < minDays {
		return days, fmt.Errorf("%w: %d < %d days", ErrRangeTooShort, days, minDays)
	}
	if maxDays > 0 && days > maxDays {
		return days, fmt.Errorf("%w: %d > %d days", ErrRangeTooLong, days, maxDays)
	}
	if Day(start).Before(Day(today)) {
		return days, ErrStartInPast
	}
	return days, nil
}

func (p Policy) Validate(start, end, today time.Time) (int, error) {
	return ValidateRange(start, end, p.MaxDays, p.MinDays, today)
}

// TotalPrice = days * rate, округление до копеек half-up.
func TotalPrice(days int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// MaxPrice — верхняя граница цены за день (колонка NUMERIC(10,2)), не включительно.
var MaxPrice = decimal.New(1, 8)

var currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", "₽", "", "USD", "", "usd", "", " ", "")

// ParsePrice разбирает цену за день из текста пользователя: "$30", "25,50", "25.5".
// Не больше двух знаков после запятой и меньше MaxPrice.
func ParsePrice(text string) (decimal.Decimal, error) {
	raw := currencyStripper.Replace(strings.TrimSpace(text))
	raw = strings.ReplaceAll(raw, ",", ".")
	if raw == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than 0", ErrInvalidPrice)
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: more than 2 decimal places", ErrInvalidPrice)
	}
	if price.GreaterThanOrEqual(MaxPrice) {
		return decimal.Zero, fmt.Errorf("%w: must be less than %s", ErrInvalidPrice, MaxPrice)
	}
	return price, nil
}
