package dialog

import "time"

type Kind string

const (
	KindText     Kind = "text"
	KindSkip     Kind = "skip"
	KindDone     Kind = "done"
	KindConfirm  Kind = "confirm"
	KindCancel   Kind = "cancel"
	KindTool     Kind = "tool"
	KindDate     Kind = "date"
	KindNavigate Kind = "navigate"
	KindChoice   Kind = "choice"
	KindPhoto    Kind = "photo"
	KindField    Kind = "field"
)

// Input — нормализованное действие пользователя, независимо от того,
// пришло оно текстом, командой или нажатием кнопки.
type Input struct {
	Kind   Kind
	Text   string
	ID     int64
	Date   time.Time
	Flag   bool
	FileID string
	Field  Field
}

func Text(s string) Input { return Input{Kind: KindText, Text: s} }
func Skip() Input { return Input{Kind: KindSkip} }
func Done() Input { return Input{Kind: KindDone} }
func Confirm() Input { return Input{Kind: KindConfirm} }
func Cancel() Input { return Input{Kind: KindCancel} }
func ToolChoice(id int64) Input { return Input{Kind: KindTool, ID: id} }
func Date(t time.Time) Input { return Input{Kind: KindDate, Date: t} }
func Choice(yes bool) Input { return Input{Kind: KindChoice, Flag: yes} }
func Photo(fileID string) Input { return Input{Kind: KindPhoto, FileID: fileID} }
func PickField(f Field) Input { return Input{Kind: KindField, Field: f} }

// Navigate листает календарь на месяц year/month, не меняя состояние.
func Navigate(year int, month time.Month) Input {
	return Input{Kind: KindNavigate, Date: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}
