package messages

import "time"

// Message — заметка к брони или переписка клиента с владельцем.
type Message struct {
	ID        int64
	UserID    int64
	BookingID *int64
	Text      string
	FromOwner bool
	CreatedAt time.Time
}
