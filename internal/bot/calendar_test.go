package bot

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonText(b tgbotapi.InlineKeyboardButton) string { return b.Text }

func buttonData(b tgbotapi.InlineKeyboardButton) string {
	if b.CallbackData == nil {
		return ""
	}
	return *b.CallbackData
}

func TestCalendarKeyboard(t *testing.T) {
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	floor := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	kb := calendarKeyboard(june, floor)
	rows := kb.InlineKeyboard

	assert.Equal(t, "June 2024", buttonText(rows[0][0]))
	require.Len(t, rows[1], 7)
	assert.Equal(t, "Mo", buttonText(rows[1][0]))
	assert.Equal(t, "Su", buttonText(rows[1][6]))

	// 1 июня 2024 — суббота: пять пустых ячеек перед ним
	week1 := rows[2]
	require.Len(t, week1, 7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, cbIgnore, buttonData(week1[i]))
	}
	assert.Equal(t, "⊘1", buttonText(week1[5]))
	assert.Equal(t, cbIgnore, buttonData(week1[5]))

	days := map[string]string{}
	for _, row := range rows[2 : len(rows)-2] {
		require.Len(t, row, 7)
		for _, b := range row {
			days[buttonText(b)] = buttonData(b)
		}
	}
	assert.Equal(t, cbIgnore, days["⊘14"])
	assert.Equal(t, "calendar:2024:6:15", days["15"])
	assert.Equal(t, "calendar:2024:6:30", days["30"])

	nav := rows[len(rows)-2]
	require.Len(t, nav, 1, "no way back before the floor month")
	assert.Equal(t, "calendar_nav:2024:7", buttonData(nav[0]))
	assert.Equal(t, cbCalendarCancel, buttonData(rows[len(rows)-1][0]))
}

func TestCalendarKeyboard_LaterMonth(t *testing.T) {
	floor := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	kb := calendarKeyboard(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), floor)
	rows := kb.InlineKeyboard

	assert.Equal(t, "December 2024", buttonText(rows[0][0]))
	nav := rows[len(rows)-2]
	require.Len(t, nav, 2)
	assert.Equal(t, "calendar_nav:2024:11", buttonData(nav[0]))
	assert.Equal(t, "calendar_nav:2025:1", buttonData(nav[1]))

	// все дни выбираемые
	for _, row := range rows[2 : len(rows)-2] {
		for _, b := range row {
			assert.NotContains(t, buttonText(b), "⊘")
		}
	}
}
