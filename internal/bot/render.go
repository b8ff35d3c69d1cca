package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/pricing"
	"github.com/Spok95/tool-bot/internal/stats"
)

const dateLayout = "2006-01-02"

var esc = html.EscapeString

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func helpText(owner bool) string {
	var sb strings.Builder
	sb.WriteString("<b>Tool rental bot</b>\n\n")
	sb.WriteString("/tools — browse available tools\n")
	sb.WriteString("/mybookings — your bookings\n")
	sb.WriteString("/contact — message the owner\n")
	sb.WriteString("/cancel — cancel the current action\n")
	sb.WriteString("/skip, /done — inside a form\n")
	sb.WriteString("/menu — show the menu\n")
	if owner {
		sb.WriteString("\n<b>Owner</b>\n")
		sb.WriteString("/addtool — add a tool\n")
		sb.WriteString("/listtools — manage tools (/edit_&lt;id&gt;, /del_&lt;id&gt;)\n")
		sb.WriteString("/bookings — recent bookings\n")
		sb.WriteString("/stats — statistics\n")
		sb.WriteString("/export — bookings as .xlsx\n")
	}
	return sb.String()
}

func toolCard(t tools.Tool, owner bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", esc(t.Name))
	if t.Description != "" {
		fmt.Fprintf(&sb, "%s\n", esc(t.Description))
	}
	fmt.Fprintf(&sb, "\n💰 %s per day\n", money(t.PricePerDay))
	if owner {
		fmt.Fprintf(&sb, "%s %s · 🖼 %d photo(s) · id %d\n", badge(t.Available), availability(t.Available), len(t.PhotoIDs), t.ID)
	} else if !t.Available {
		sb.WriteString("🚫 Currently unavailable\n")
	}
	return sb.String()
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

func deliveryText(required bool, address *string) string {
	if !required {
		return "pickup"
	}
	if address == nil {
		return "delivery"
	}
	return "delivery to " + esc(*address)
}

func bookingCard(b bookings.Booking, owner bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Booking #%d</b> · %s\n", statusIcon(b.Status), b.ID, b.Status)
	fmt.Fprintf(&sb, "🧰 %s\n", esc(b.ToolName))
	fmt.Fprintf(&sb, "📅 %s → %s (%d day(s))\n", b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.Days())
	fmt.Fprintf(&sb, "🚚 %s\n", deliveryText(b.DeliveryRequired, b.DeliveryAddress))
	fmt.Fprintf(&sb, "💰 %s\n", money(b.TotalPrice))
	if owner {
		fmt.Fprintf(&sb, "👤 %s\n", customerName(b))
	}
	return sb.String()
}

// maxConversation — сколько последних сообщений показывать в карточке брони.
const maxConversation = 10

// conversation — заметка к брони и переписка, старые сверху.
func conversation(msgs []messages.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n💬 <b>Messages</b>\n")
	if len(msgs) > maxConversation {
		fmt.Fprintf(&sb, "… %d earlier\n", len(msgs)-maxConversation)
		msgs = msgs[len(msgs)-maxConversation:]
	}
	for _, m := range msgs {
		who := "Customer"
		if m.FromOwner {
			who = "Owner"
		}
		fmt.Fprintf(&sb, "%s · <i>%s</i>: %s\n", m.CreatedAt.Format("2006-01-02 15:04"), who, esc(m.Text))
	}
	return sb.String()
}

func customerName(b bookings.Booking) string {
	name := esc(b.FullName)
	if b.Username != "" {
		name = strings.TrimSpace(name + " @" + esc(b.Username))
	}
	if name == "" {
		name = fmt.Sprintf("id %d", b.UserID)
	}
	return name
}

// bookingSummary — черновик перед подтверждением.
func bookingSummary(d *dialog.BookingDraft) string {
	var sb strings.Builder
	sb.WriteString("<b>Please check your booking</b>\n\n")
	fmt.Fprintf(&sb, "🧰 %s\n", esc(d.ToolName))
	if d.Start != nil && d.End != nil {
		fmt.Fprintf(&sb, "📅 %s → %s (%d day(s))\n", d.Start.Format(dateLayout), d.End.Format(dateLayout), d.Days)
	}
	fmt.Fprintf(&sb, "💵 %s/day · total <b>%s</b>\n", money(d.Rate), money(d.Total))
	fmt.Fprintf(&sb, "🚚 %s\n", deliveryText(d.Delivery, d.Address))
	if d.Note != "" {
		fmt.Fprintf(&sb, "📝 %s\n", esc(d.Note))
	}
	return sb.String()
}

func statsText(s *stats.Stats) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Statistics</b>\n\n")
	fmt.Fprintf(&sb, "🧰 Tools: %d (%d available)\n", s.Tools, s.AvailableTools)
	fmt.Fprintf(&sb, "👥 Customers: %d (%d registered)\n", s.Customers, s.Registered)
	fmt.Fprintf(&sb, "📑 Bookings: %d\n", s.Bookings)
	for _, st := range stats.Statuses() {
		fmt.Fprintf(&sb, "   %s %s: %d\n", statusIcon(st), st, s.ByStatus[st])
	}
	fmt.Fprintf(&sb, "\n💰 Revenue: %s\n", money(s.Revenue))
	fmt.Fprintf(&sb, "📆 Since %s: %d booking(s), %s\n", s.MonthStart.Format(dateLayout), s.BookingsMonth, money(s.RevenueMonth))
	return sb.String()
}

// errorText — подсказка пользователю при отклонённом вводе.
func errorText(err error, p pricing.Policy) string {
	switch {
	case errors.Is(err, pricing.ErrStartInPast):
		return "⚠️ The start date can't be in the past."
	case errors.Is(err, pricing.ErrInvalidRange):
		return "⚠️ The end date can't be before the start date."
	case errors.Is(err, pricing.ErrRangeTooShort):
		return fmt.Sprintf("⚠️ Minimum booking period is %d day(s).", p.MinDays)
	case errors.Is(err, pricing.ErrRangeTooLong):
		return fmt.Sprintf("⚠️ Maximum booking period is %d day(s).", p.MaxDays)
	case errors.Is(err, pricing.ErrInvalidPrice):
		return "⚠️ Invalid price. Send a positive amount below 100000000 with at most 2 decimals, e.g. 25.50"
	case errors.Is(err, dialog.ErrEmptyText):
		return "⚠️ Please send a non-empty text."
	case errors.Is(err, dialog.ErrToolUnavailable):
		return "⚠️ This tool is not available right now."
	case errors.Is(err, dialog.ErrDeleteBlocked):
		return "⛔️ This tool has active bookings and can't be deleted."
	case errors.Is(err, dialog.ErrBadTransition):
		return "⚠️ This booking can't be changed to that status."
	case errors.Is(err, dialog.ErrForbidden):
		return "⛔️ Access denied."
	}
	return "⚠️ Please follow the prompt or use the buttons."
}
