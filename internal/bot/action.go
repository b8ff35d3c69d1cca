package bot

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/users"
)

// Origin — откуда пришло действие.
type Origin string

const (
	OriginText     Origin = "text"
	OriginCommand  Origin = "command"
	OriginCallback Origin = "callback"
	OriginPhoto    Origin = "photo"
)

// Action — апдейт, приведённый к одному виду: текст, команда, кнопка или фото.
type Action struct {
	Origin     Origin
	From       users.Telegram
	ChatID     int64
	MessageID  int
	CallbackID string
	// Command без слэша; для кнопок нижнего меню тоже заполняется
	Command string
	// Text — текст сообщения, аргументы команды или данные кнопки
	Text   string
	FileID string
}

func actionFrom(upd tgbotapi.Update) (Action, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		if cb.From == nil {
			return Action{}, false
		}
		a := Action{Origin: OriginCallback, From: telegramUser(cb.From), CallbackID: cb.ID, Text: cb.Data}
		if cb.Message != nil && cb.Message.Chat != nil {
			a.ChatID = cb.Message.Chat.ID
			a.MessageID = cb.Message.MessageID
		} else {
			a.ChatID = cb.From.ID
		}
		return a, true

	case upd.Message != nil:
		msg := upd.Message
		if msg.From == nil || msg.Chat == nil {
			return Action{}, false
		}
		a := Action{From: telegramUser(msg.From), ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		switch {
		case msg.IsCommand():
			a.Origin = OriginCommand
			a.Command = strings.ToLower(msg.Command())
			a.Text = strings.TrimSpace(msg.CommandArguments())
		case len(msg.Photo) > 0:
			a.Origin = OriginPhoto
			// последний размер — самый большой
			a.FileID = msg.Photo[len(msg.Photo)-1].FileID
			a.Text = msg.Caption
		default:
			a.Origin = OriginText
			a.Text = msg.Text
			if cmd, ok := menuCommands[strings.TrimSpace(msg.Text)]; ok {
				a.Origin = OriginCommand
				a.Command = cmd
				a.Text = ""
			}
		}
		return a, true
	}
	return Action{}, false
}

func telegramUser(u *tgbotapi.User) users.Telegram {
	return users.Telegram{ID: u.ID, Username: u.UserName, FirstName: u.FirstName, LastName: u.LastName}
}

// callback разбирает "name:arg1:arg2".
func callback(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}

func argID(args []string, i int) (int64, bool) {
	if i >= len(args) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	return id, err == nil && id > 0
}

func argInts(args []string, n int) ([]int, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]int, n)
	for i, s := range args {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// inputFor переводит действие в ввод для активного диалога.
// false — действие не относится к диалогу (меню, навигация по каталогу).
func inputFor(a Action) (dialog.Input, bool) {
	switch a.Origin {
	case OriginText:
		return dialog.Text(a.Text), true
	case OriginPhoto:
		return dialog.Photo(a.FileID), true
	case OriginCommand:
		switch a.Command {
		case cmdCancel:
			return dialog.Cancel(), true
		case cmdSkip:
			return dialog.Skip(), true
		case cmdDone:
			return dialog.Done(), true
		}
		return dialog.Input{}, false
	}

	name, args := callback(a.Text)
	switch name {
	case cbNav:
		if len(args) == 1 && args[0] == "cancel" {
			return dialog.Cancel(), true
		}
	case cbCalendarCancel, cbCancelBooking, cbCancelDelete, cbCancelReview, cbCancelTool:
		return dialog.Cancel(), true
	case cbConfirmBooking, cbConfirmDelete, cbConfirmReview, cbConfirmTool:
		return dialog.Confirm(), true
	case cbSkip:
		return dialog.Skip(), true
	case cbPhotosDone, cbDoneEditing:
		return dialog.Done(), true
	case cbDeliveryYes:
		return dialog.Choice(true), true
	case cbDeliveryNo:
		return dialog.Choice(false), true
	case cbEditField:
		if len(args) == 1 && dialog.Field(args[0]).Valid() {
			return dialog.PickField(dialog.Field(args[0])), true
		}
	case cbCalendar:
		if v, ok := argInts(args, 3); ok {
			d := time.Date(v[0], time.Month(v[1]), v[2], 0, 0, 0, 0, time.UTC)
			// 2024:2:31 нормализуется в март, такие данные не принимаем
			if d.Day() == v[2] && int(d.Month()) == v[1] {
				return dialog.Date(d), true
			}
		}
	case cbCalendarNav:
		if v, ok := argInts(args, 2); ok && v[1] >= 1 && v[1] <= 12 {
			return dialog.Navigate(v[0], time.Month(v[1])), true
		}
	}
	return dialog.Input{}, false
}
