package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/tools"
)

// view — текст и клавиатура ответа. inline и menu взаимоисключающие.
type view struct {
	text   string
	inline *tgbotapi.InlineKeyboardMarkup
	menu   *tgbotapi.ReplyKeyboardMarkup
}

func withInline(text string, kb tgbotapi.InlineKeyboardMarkup) view {
	return view{text: text, inline: &kb}
}

func withMenu(text string, owner bool) view {
	kb := mainMenu(owner)
	return view{text: text, menu: &kb}
}

// show: на нажатие кнопки правим исходное сообщение, иначе отправляем новое.
// Нижнее меню можно прислать только новым сообщением.
func (b *Bot) show(a Action, v view) {
	if a.Origin == OriginCallback && a.MessageID != 0 && v.menu == nil {
		var edit tgbotapi.EditMessageTextConfig
		if v.inline != nil {
			edit = tgbotapi.NewEditMessageTextAndMarkup(a.ChatID, a.MessageID, v.text, *v.inline)
		} else {
			edit = tgbotapi.NewEditMessageText(a.ChatID, a.MessageID, v.text)
		}
		edit.ParseMode = tgbotapi.ModeHTML
		b.send(edit)
		return
	}
	b.sendView(a.ChatID, v)
}

func (b *Bot) sendView(chatID int64, v view) {
	m := tgbotapi.NewMessage(chatID, v.text)
	m.ParseMode = tgbotapi.ModeHTML
	switch {
	case v.inline != nil:
		m.ReplyMarkup = *v.inline
	case v.menu != nil:
		m.ReplyMarkup = *v.menu
	}
	b.send(m)
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendView(chatID, view{text: text})
}

// start запускает сценарий и показывает первый шаг.
func (b *Bot) start(ctx context.Context, a Action, flow dialog.Flow, target *dialog.Target, seed ...dialog.Input) {
	r, err := b.engine.Start(ctx, b.requester(a), flow, target, seed...)
	b.renderDialog(a, r, err)
}

func (b *Bot) onInput(ctx context.Context, a Action) {
	in, ok := inputFor(a)
	if !ok {
		if a.Origin == OriginCallback {
			b.log.Debug("unknown callback", "data", a.Text, "user_id", a.From.ID)
		}
		return
	}
	r, err := b.engine.Handle(ctx, a.From.ID, in)
	b.renderDialog(a, r, err)
}

func (b *Bot) renderDialog(a Action, r dialog.Reply, err error) {
	owner := b.isOwner(a.From.ID)
	switch {
	case err == nil:
	case errors.Is(err, dialog.ErrNotFound):
		b.sendView(a.ChatID, withMenu("⚠️ This item no longer exists.", owner))
		return
	case errors.Is(err, dialog.ErrNoDialog):
		if a.Origin == OriginCallback {
			b.show(a, view{text: "⌛️ This action has expired."})
			return
		}
		b.sendView(a.ChatID, withMenu("Nothing in progress. Use the menu below or /help.", owner))
		return
	default:
		b.log.Error("dialog step failed", "err", err, "user_id", a.From.ID)
		b.reply(a.ChatID, "⚠️ Something went wrong. Please try again.")
		return
	}

	if r.Err != nil && r.State == dialog.StateCancelled {
		// сценарий не начался
		b.sendView(a.ChatID, withMenu(errorText(r.Err, b.policy), owner))
		return
	}
	v := b.dialogView(r, owner)
	if r.Err != nil {
		v.text = errorText(r.Err, b.policy) + "\n\n" + v.text
		// на ошибку ввода переспрашиваем новым сообщением, старое не трогаем
		b.sendView(a.ChatID, v)
		return
	}
	b.show(a, v)
}

func (b *Bot) dialogView(r dialog.Reply, owner bool) view {
	s := r.Session
	cancel := navKeyboard(true)

	switch r.State {
	case dialog.StateBookingTool:
		return withInline("🧰 Choose a tool from the /tools list.", cancel)

	case dialog.StateBookingStart:
		floor := b.today()
		month := r.Month
		if month.IsZero() {
			month = floor
		}
		return withInline(fmt.Sprintf("📅 <b>%s</b>\nSelect the <b>start</b> date:", esc(s.Booking.ToolName)),
			calendarKeyboard(month, floor))

	case dialog.StateBookingEnd:
		start := *s.Booking.Start
		month := r.Month
		if month.IsZero() {
			month = start
		}
		return withInline(fmt.Sprintf("📅 <b>%s</b>\nStart: %s\nSelect the <b>end</b> date (up to %d day(s)):",
			esc(s.Booking.ToolName), start.Format(dateLayout), b.policy.MaxDays),
			calendarKeyboard(month, start))

	case dialog.StateBookingDelivery:
		d := s.Booking
		return withInline(fmt.Sprintf("📅 %s → %s · %d day(s) · total <b>%s</b>\n\n🚚 Do you need delivery?",
			d.Start.Format(dateLayout), d.End.Format(dateLayout), d.Days, money(d.Total)), deliveryKeyboard())

	case dialog.StateBookingAddress:
		return withInline("📍 Send the delivery address, or skip to provide it later.", skipKeyboard())

	case dialog.StateBookingNote:
		return withInline("📝 Add a note for the owner, or skip.", skipKeyboard())

	case dialog.StateBookingConfirm:
		return withInline(bookingSummary(s.Booking), confirmKeyboard(cbConfirmBooking, cbCancelBooking))

	case dialog.StateToolName:
		return withInline("➕ <b>New tool</b>\nSend the tool name:", cancel)
	case dialog.StateToolDescription:
		return withInline("Send a short description:", cancel)
	case dialog.StateToolPrice:
		return withInline("💰 Send the price per day, e.g. 25.50:", cancel)
	case dialog.StateToolPhotos, dialog.StateEditPhotos:
		n := 0
		if s.Tool != nil {
			n = len(s.Tool.Photos)
		}
		text := fmt.Sprintf("🖼 Send up to %d photos (%d added), then press Done.", tools.MaxPhotos, n)
		if r.State == dialog.StateEditPhotos {
			text += "\nThe new photos replace the current ones; Skip removes all photos."
		}
		return withInline(text, photosKeyboard())
	case dialog.StateToolConfirm:
		return withInline(toolDraftSummary(s.Tool), confirmKeyboard(cbConfirmTool, cbCancelTool))

	case dialog.StateEditField:
		text := "✏️ Choose a field to edit:"
		if r.Tool != nil {
			text = toolCard(*r.Tool, true) + "\n" + text
		} else if s.Target != nil {
			text = fmt.Sprintf("✏️ <b>%s</b>\nChoose a field to edit:", esc(s.Target.ToolName))
		}
		return withInline(text, fieldKeyboard())
	case dialog.StateEditName:
		return withInline("Send the new name:", cancel)
	case dialog.StateEditDescription:
		return withInline("Send the new description:", cancel)
	case dialog.StateEditPrice:
		return withInline("💰 Send the new price per day:", cancel)

	case dialog.StateDeleteConfirm:
		var sb strings.Builder
		fmt.Fprintf(&sb, "🗑 Delete <b>%s</b>?", esc(s.Target.ToolName))
		if s.Target.ActiveBookings > 0 {
			fmt.Fprintf(&sb, "\n\n⚠️ It has %d active booking(s). They will keep the tool name but lose the link.", s.Target.ActiveBookings)
		}
		return withInline(sb.String(), confirmKeyboard(cbConfirmDelete, cbCancelDelete))

	case dialog.StateReviewConfirm:
		text := fmt.Sprintf("Change the status of booking #%d to <b>%s</b>?", s.Target.BookingID, s.Target.Status)
		if r.Booking != nil {
			text = bookingCard(*r.Booking, owner) + "\n" + text
		}
		return withInline(text, confirmKeyboard(cbConfirmReview, cbCancelReview))

	case dialog.StateMessageText:
		text := "✉️ Type your message:"
		if s.Target != nil && s.Target.BookingID != 0 {
			text = fmt.Sprintf("✉️ Type your message about booking #%d:", s.Target.BookingID)
		}
		return withInline(text, cancel)

	case dialog.StateFinalized:
		return withMenu(finalText(r), owner)
	}
	return withMenu("✖️ Cancelled.", owner)
}

func finalText(r dialog.Reply) string {
	switch r.Flow {
	case dialog.FlowBooking:
		if r.Booking != nil {
			return fmt.Sprintf("✅ Booking #%d created. Status: %s.\nThe owner will confirm it soon.", r.Booking.ID, r.Booking.Status)
		}
	case dialog.FlowAddTool:
		if r.Tool != nil {
			return fmt.Sprintf("✅ Tool <b>%s</b> added (id %d).", esc(r.Tool.Name), r.Tool.ID)
		}
	case dialog.FlowEditTool:
		return "✅ Editing finished."
	case dialog.FlowDeleteTool:
		return "🗑 Tool deleted."
	case dialog.FlowReview:
		if r.Booking != nil {
			return fmt.Sprintf("%s Booking #%d is now %s.", statusIcon(r.Booking.Status), r.Booking.ID, r.Booking.Status)
		}
	case dialog.FlowMessage:
		return "✉️ Message sent."
	}
	return "✅ Done."
}

func toolDraftSummary(d *dialog.ToolDraft) string {
	var sb strings.Builder
	sb.WriteString("<b>Please check the new tool</b>\n\n")
	fmt.Fprintf(&sb, "🧰 %s\n", esc(d.Name))
	fmt.Fprintf(&sb, "%s\n", esc(d.Description))
	fmt.Fprintf(&sb, "💰 %s per day\n", money(d.Price))
	fmt.Fprintf(&sb, "🖼 %d photo(s)\n", len(d.Photos))
	return sb.String()
}
