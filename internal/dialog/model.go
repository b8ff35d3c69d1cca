package dialog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
)

type Flow string

const (
	FlowBooking    Flow = "booking"
	FlowAddTool    Flow = "add_tool"
	FlowEditTool   Flow = "edit_tool"
	FlowDeleteTool Flow = "delete_tool"
	FlowReview     Flow = "review"
	FlowMessage    Flow = "message"
)

type State string

const (
	// Бронирование
	StateBookingTool     State = "booking:tool"
	StateBookingStart    State = "booking:start"
	StateBookingEnd      State = "booking:end"
	StateBookingDelivery State = "booking:delivery"
	StateBookingAddress  State = "booking:address"
	StateBookingNote     State = "booking:note"
	StateBookingConfirm  State = "booking:confirm"

	// Новый инструмент
	StateToolName        State = "tool:name"
	StateToolDescription State = "tool:description"
	StateToolPrice       State = "tool:price"
	StateToolPhotos      State = "tool:photos"
	StateToolConfirm     State = "tool:confirm"

	// Редактирование: выбор поля → ввод значения → снова выбор поля
	StateEditField       State = "edit:field"
	StateEditName        State = "edit:name"
	StateEditDescription State = "edit:description"
	StateEditPrice       State = "edit:price"
	StateEditPhotos      State = "edit:photos"

	StateDeleteConfirm State = "delete:confirm"
	StateReviewConfirm State = "review:confirm"
	StateMessageText   State = "message:text"

	StateFinalized State = "finalized"
	StateCancelled State = "cancelled"
)

// Terminal — после этого состояния сессия удаляется.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateCancelled
}

// Field — редактируемое поле инструмента.
type Field string

const (
	FieldName         Field = "name"
	FieldDescription  Field = "description"
	FieldPrice        Field = "price"
	FieldPhotos       Field = "photos"
	FieldAvailability Field = "availability"
)

var Fields = []Field{FieldName, FieldDescription, FieldPrice, FieldPhotos, FieldAvailability}

func (f Field) Valid() bool {
	for _, v := range Fields {
		if v == f {
			return true
		}
	}
	return false
}

// Requester — тот, кто ведёт диалог. UserID — ключ сессии.
type Requester struct {
	UserID   int64  `json:"user_id"`
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Owner    bool   `json:"owner,omitempty"`
}

type BookingDraft struct {
	ToolID   int64           `json:"tool_id,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	Rate     decimal.Decimal `json:"rate"`
	Start    *time.Time      `json:"start,omitempty"`
	End      *time.Time      `json:"end,omitempty"`
	Days     int             `json:"days,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Delivery bool            `json:"delivery,omitempty"`
	Address  *string         `json:"address,omitempty"`
	Note     string          `json:"note,omitempty"`
}

type ToolDraft struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Photos      []string        `json:"photos,omitempty"`
}

// Target — объект, над которым работает короткий диалог (правка, удаление, ревью, сообщение).
type Target struct {
	ToolID         int64           `json:"tool_id,omitempty"`
	ToolName       string          `json:"tool_name,omitempty"`
	BookingID      int64           `json:"booking_id,omitempty"`
	Status         bookings.Status `json:"status,omitempty"`
	ActiveBookings int             `json:"active_bookings,omitempty"`
	RecipientID    int64           `json:"recipient_id,omitempty"`
}

// Session — состояние одного диалога пользователя, сериализуется в JSON.
type Session struct {
	Requester Requester     `json:"requester"`
	Flow      Flow          `json:"flow"`
	State     State         `json:"state"`
	Booking   *BookingDraft `json:"booking,omitempty"`
	Tool      *ToolDraft    `json:"tool,omitempty"`
	Target    *Target       `json:"target,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}
