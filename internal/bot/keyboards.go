package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/tools"
)

func navKeyboard(cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func skipKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", cbSkip),
		),
		navKeyboard(true).InlineKeyboard[0],
	)
}

func confirmKeyboard(confirm, cancel string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", confirm),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cancel),
		),
	)
}

func deliveryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚚 Yes, deliver", cbDeliveryYes),
			tgbotapi.NewInlineKeyboardButtonData("🏠 No, pick up", cbDeliveryNo),
		),
		navKeyboard(true).InlineKeyboard[0],
	)
}

func photosKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", cbPhotosDone),
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", cbSkip),
		),
		navKeyboard(true).InlineKeyboard[0],
	)
}

var fieldLabels = map[dialog.Field]string{
	dialog.FieldName:         "Name",
	dialog.FieldDescription:  "Description",
	dialog.FieldPrice:        "Price",
	dialog.FieldPhotos:       "Photos",
	dialog.FieldAvailability: "Toggle availability",
}

func fieldKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := []tgbotapi.InlineKeyboardButton{}
	for _, f := range dialog.Fields {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fieldLabels[f], cbEditField+":"+string(f)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = []tgbotapi.InlineKeyboardButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Done editing", cbDoneEditing),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// pager — кнопки «назад/вперёд» для постраничных списков.
func pager(prefix string, page, total, perPage int) []tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{}
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("%s:%d", prefix, page-1)))
	}
	if (page+1)*perPage < total {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("%s:%d", prefix, page+1)))
	}
	return row
}

func toolListKeyboard(list []tools.Tool, owner bool, page, total, perPage int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range list {
		label := fmt.Sprintf("%s · %s/day", t.Name, money(t.PricePerDay))
		if owner {
			label = badge(t.Available) + " " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", cbToolDetail, t.ID)),
		))
	}
	prefix := cbToolsPage
	if owner {
		prefix = cbOwnerToolsPage
	}
	if nav := pager(prefix, page, total, perPage); len(nav) > 0 {
		rows = append(rows, nav)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func toolDetailKeyboard(t tools.Tool, owner bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if t.Available {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Book now", fmt.Sprintf("%s:%d", cbBookTool, t.ID)),
		))
	}
	if owner {
		toggle := "🚫 Make unavailable"
		if !t.Available {
			toggle = "🟢 Make available"
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", fmt.Sprintf("%s:%d", cbEditTool, t.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s:%d", cbDeleteTool, t.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(toggle, fmt.Sprintf("%s:%d", cbToggleAvailable, t.ID)),
			),
		)
	}
	back := cbToolsPage + ":0"
	if owner {
		back = cbOwnerToolsPage + ":0"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to list", back),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func bookingListKeyboard(list []bookings.Booking, owner bool, page, total, perPage int) tgbotapi.InlineKeyboardMarkup {
	detail := cbMyBooking
	if owner {
		detail = cbOwnerBooking
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range list {
		label := fmt.Sprintf("%s #%d %s · %s", statusIcon(b.Status), b.ID, b.ToolName, b.StartDate.Format(dateLayout))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", detail, b.ID)),
		))
	}
	if owner {
		if nav := pager(cbBookingsPage, page, total, perPage); len(nav) > 0 {
			rows = append(rows, nav)
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// bookingActionsKeyboard: владельцу смена статуса и ответ, клиенту отмена и сообщение.
func bookingActionsKeyboard(b bookings.Booking, owner bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	setStatus := func(label string, to bookings.Status) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d:%s", cbSetStatus, b.ID, to))
	}
	if owner {
		switch b.Status {
		case bookings.StatusPending:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				setStatus("✅ Confirm", bookings.StatusConfirmed),
				setStatus("❌ Reject", bookings.StatusCancelled),
			))
		case bookings.StatusConfirmed:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				setStatus("🏁 Complete", bookings.StatusCompleted),
				setStatus("❌ Cancel", bookings.StatusCancelled),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Reply to customer", fmt.Sprintf("%s:%d", cbReplyCustomer, b.ID)),
		))
		return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	}
	if b.Status.Active() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel booking", fmt.Sprintf("%s:%d", cbCancelMyBooking, b.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💬 Message owner", fmt.Sprintf("%s:%d", cbMessageBooking, b.ID)),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// mainMenu Нижняя панель; владельцу добавляются кнопки управления.
func mainMenu(owner bool) tgbotapi.ReplyKeyboardMarkup {
	kb := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(btnTools), tgbotapi.NewKeyboardButton(btnMyBookings)},
		{tgbotapi.NewKeyboardButton(btnContact), tgbotapi.NewKeyboardButton(btnHelp)},
	}
	if owner {
		kb = [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnTools), tgbotapi.NewKeyboardButton(btnManage)},
			{tgbotapi.NewKeyboardButton(btnAddTool), tgbotapi.NewKeyboardButton(btnBookings)},
			{tgbotapi.NewKeyboardButton(btnStats), tgbotapi.NewKeyboardButton(btnExport)},
			{tgbotapi.NewKeyboardButton(btnHelp)},
		}
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: kb}
}

// Бейдж доступности
func badge(b bool) string {
	if b {
		return "🟢"
	}
	return "🚫"
}

func statusIcon(s bookings.Status) string {
	switch s {
	case bookings.StatusPending:
		return "⏳"
	case bookings.StatusConfirmed:
		return "✅"
	case bookings.StatusCompleted:
		return "🏁"
	case bookings.StatusCancelled:
		return "❌"
	}
	return "•"
}
