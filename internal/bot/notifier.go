package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier доставляет уведомления владельцу и клиентам в личные чаты.
type Notifier struct {
	api     Sender
	ownerID int64
}

func NewNotifier(api Sender, ownerID int64) *Notifier {
	return &Notifier{api: api, ownerID: ownerID}
}

func (n *Notifier) deliver(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		m.ReplyMarkup = *kb
	}
	if _, err := n.api.Send(m); err != nil {
		return fmt.Errorf("notify %d: %w", chatID, err)
	}
	return nil
}

func (n *Notifier) BookingCreated(_ context.Context, b bookings.Booking, note string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🆕 <b>New booking #%d</b>\n\n", b.ID)
	fmt.Fprintf(&sb, "🧰 %s\n", esc(b.ToolName))
	fmt.Fprintf(&sb, "👤 %s\n", customerName(b))
	fmt.Fprintf(&sb, "📅 %s → %s (%d day(s))\n", b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.Days())
	fmt.Fprintf(&sb, "💰 %s\n", money(b.TotalPrice))
	fmt.Fprintf(&sb, "🚚 %s\n", deliveryText(b.DeliveryRequired, b.DeliveryAddress))
	if note != "" {
		fmt.Fprintf(&sb, "📝 %s\n", esc(note))
	}
	kb := bookingActionsKeyboard(b, true)
	return n.deliver(n.ownerID, sb.String(), &kb)
}

// BookingStatusChanged: решение владельца уходит клиенту, отмена клиентом уходит владельцу.
func (n *Notifier) BookingStatusChanged(_ context.Context, b bookings.Booking, by dialog.Requester) error {
	if by.Owner {
		text := fmt.Sprintf("%s Your booking #%d for <b>%s</b> (%s → %s) is now <b>%s</b>.",
			statusIcon(b.Status), b.ID, esc(b.ToolName),
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.Status)
		return n.deliver(b.UserID, text, nil)
	}
	text := fmt.Sprintf("%s Booking #%d for <b>%s</b> was %s by %s.",
		statusIcon(b.Status), b.ID, esc(b.ToolName), b.Status, customerName(b))
	return n.deliver(n.ownerID, text, nil)
}

func (n *Notifier) MessageSent(_ context.Context, m messages.Message, from dialog.Requester, to int64) error {
	var sb strings.Builder
	if from.Owner {
		sb.WriteString("💬 <b>Message from the owner</b>")
	} else {
		name := from.FullName
		if from.Username != "" {
			name = strings.TrimSpace(name + " @" + from.Username)
		}
		fmt.Fprintf(&sb, "💬 <b>Message from %s</b>", esc(name))
	}
	if m.BookingID != nil {
		fmt.Fprintf(&sb, " about booking #%d", *m.BookingID)
	}
	fmt.Fprintf(&sb, ":\n\n%s", esc(m.Text))

	// кнопка ответа ведёт обратно в диалог сообщения
	data := fmt.Sprintf("%s:%d", cbReplyUser, from.UserID)
	switch {
	case from.Owner && m.BookingID != nil:
		data = fmt.Sprintf("%s:%d", cbMessageBooking, *m.BookingID)
	case from.Owner:
		data = ""
	case m.BookingID != nil:
		data = fmt.Sprintf("%s:%d", cbReplyCustomer, *m.BookingID)
	}

	var kb *tgbotapi.InlineKeyboardMarkup
	if data != "" {
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Reply", data),
		))
		kb = &markup
	}
	return n.deliver(to, sb.String(), kb)
}
