package users

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FullName   string
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Telegram — профиль отправителя из апдейта.
type Telegram struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func (t Telegram) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// DisplayName — @username, если есть, иначе имя.
func (t Telegram) DisplayName() string {
	if t.Username != "" {
		return "@" + t.Username
	}
	if n := t.FullName(); n != "" {
		return n
	}
	return "user"
}
