package bot

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/pricing"
)

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func ignoreButton(text string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, cbIgnore)
}

// calendarKeyboard — сетка месяца month, неделя с понедельника.
// Дни раньше floor показываются, но не выбираются; «назад» есть, только
// если в предыдущем месяце остались доступные дни.
func calendarKeyboard(month, floor time.Time) tgbotapi.InlineKeyboardMarkup {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	floor = pricing.Day(floor)

	rows := [][]tgbotapi.InlineKeyboardButton{
		{ignoreButton(first.Format("January 2006"))},
	}
	head := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, w := range weekdays {
		head = append(head, ignoreButton(w))
	}
	rows = append(rows, head)

	offset := (int(first.Weekday()) + 6) % 7
	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, ignoreButton(" "))
	}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if d.Before(floor) {
			week = append(week, ignoreButton("⊘"+strconv.Itoa(d.Day())))
		} else {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(d.Day()),
				fmt.Sprintf("%s:%d:%d:%d", cbCalendar, d.Year(), int(d.Month()), d.Day())))
		}
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, ignoreButton(" "))
		}
		rows = append(rows, week)
	}

	nav := []tgbotapi.InlineKeyboardButton{}
	if first.After(floor) {
		prev := first.AddDate(0, -1, 0)
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("‹ Prev",
			fmt.Sprintf("%s:%d:%d", cbCalendarNav, prev.Year(), int(prev.Month()))))
	}
	next := first.AddDate(0, 1, 0)
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ›",
		fmt.Sprintf("%s:%d:%d", cbCalendarNav, next.Year(), int(next.Month()))))
	rows = append(rows, nav, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cbCalendarCancel),
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
