package tools

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MaxPhotos — лимит вложений на карточку инструмента (media group в Telegram).
const MaxPhotos = 10

var ErrNotFound = errors.New("tools: not found")

type Tool struct {
	ID          int64
	Name        string
	Description string
	PricePerDay decimal.Decimal
	PhotoIDs    []string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter для списка и счётчика.
type Filter struct {
	OnlyAvailable bool
}

// Patch — частичное обновление; nil-поля не трогаем.
type Patch struct {
	Name        *string
	Description *string
	PricePerDay *decimal.Decimal
	PhotoIDs    *[]string
	Available   *bool
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.PricePerDay == nil && p.PhotoIDs == nil && p.Available == nil
}
