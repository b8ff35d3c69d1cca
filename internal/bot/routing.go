package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/domain/users"
	"github.com/Spok95/tool-bot/internal/infra/metrics"
	"github.com/Spok95/tool-bot/internal/report"
	"github.com/Spok95/tool-bot/internal/stats"
)

func (b *Bot) handle(ctx context.Context, a Action) {
	metrics.Updates.WithLabelValues(string(a.Origin)).Inc()

	role := users.RoleCustomer
	if b.isOwner(a.From.ID) {
		role = users.RoleOwner
	}
	if _, err := b.users.UpsertFromTelegram(ctx, a.From, role); err != nil {
		b.log.Warn("user upsert failed", "err", err, "user_id", a.From.ID)
	}

	switch a.Origin {
	case OriginCommand:
		b.handleCommand(ctx, a)
	case OriginCallback:
		b.answerCallback(a.CallbackID, "", false)
		b.handleCallback(ctx, a)
	default:
		b.onInput(ctx, a)
	}
}

func (b *Bot) ownerOnly(a Action) bool {
	if b.isOwner(a.From.ID) {
		return true
	}
	b.reply(a.ChatID, "⛔️ Access denied.")
	return false
}

func (b *Bot) handleCommand(ctx context.Context, a Action) {
	owner := b.isOwner(a.From.ID)
	cmd := a.Command

	switch {
	case cmd == cmdStart:
		b.sendView(a.ChatID, withMenu(fmt.Sprintf("👋 Hi, %s!\n\n%s", esc(a.From.DisplayName()), helpText(owner)), owner))
	case cmd == cmdHelp:
		b.sendView(a.ChatID, withMenu(helpText(owner), owner))
	case cmd == cmdMenu:
		b.sendView(a.ChatID, withMenu("📋 Main menu", owner))
	case cmd == cmdCancel:
		cancelled, err := b.engine.Cancel(ctx, a.From.ID)
		if err != nil {
			b.log.Error("cancel failed", "err", err, "user_id", a.From.ID)
		}
		text := "Nothing to cancel."
		if cancelled {
			text = "✖️ Cancelled."
		}
		b.sendView(a.ChatID, withMenu(text, owner))
	case cmd == cmdSkip, cmd == cmdDone:
		b.onInput(ctx, a)

	case cmd == cmdTools:
		b.showTools(ctx, a, 0, false)
	case cmd == cmdMyBookings:
		b.showMyBookings(ctx, a)
	case cmd == cmdContact:
		b.start(ctx, a, dialog.FlowMessage, &dialog.Target{})

	case cmd == cmdOwner:
		if b.ownerOnly(a) {
			b.sendView(a.ChatID, withMenu("🛠 Owner menu\n\n"+helpText(true), true))
		}
	case cmd == cmdAddTool:
		if b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowAddTool, nil)
		}
	case cmd == cmdListTools, cmd == cmdEditTool, cmd == cmdDelTool:
		if b.ownerOnly(a) {
			b.showTools(ctx, a, 0, true)
		}
	case cmd == cmdBookings:
		if b.ownerOnly(a) {
			b.showBookings(ctx, a, 0)
		}
	case cmd == cmdStats:
		if b.ownerOnly(a) {
			b.showStats(ctx, a)
		}
	case cmd == cmdExport:
		if b.ownerOnly(a) {
			b.export(ctx, a)
		}

	case strings.HasPrefix(cmd, cmdEditPrefix):
		if id, ok := parseID(strings.TrimPrefix(cmd, cmdEditPrefix)); ok && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowEditTool, &dialog.Target{ToolID: id})
		}
	case strings.HasPrefix(cmd, cmdDelPrefix):
		if id, ok := parseID(strings.TrimPrefix(cmd, cmdDelPrefix)); ok && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowDeleteTool, &dialog.Target{ToolID: id})
		}

	default:
		b.reply(a.ChatID, "Unknown command. Type /help")
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

func (b *Bot) handleCallback(ctx context.Context, a Action) {
	name, args := callback(a.Text)
	id, hasID := argID(args, 0)

	switch name {
	case cbIgnore:
	case cbMenu:
		b.sendView(a.ChatID, withMenu("📋 Main menu", b.isOwner(a.From.ID)))

	case cbToolsPage, cbOwnerToolsPage:
		page, err := strconv.Atoi(strings.Join(args, ""))
		if err != nil || page < 0 {
			page = 0
		}
		if name == cbOwnerToolsPage && !b.ownerOnly(a) {
			return
		}
		b.showTools(ctx, a, page, name == cbOwnerToolsPage)
	case cbToolDetail:
		if hasID {
			b.showTool(ctx, a, id)
		}
	case cbBookTool:
		if hasID {
			b.start(ctx, a, dialog.FlowBooking, nil, dialog.ToolChoice(id))
		}
	case cbToggleAvailable:
		if hasID && b.ownerOnly(a) {
			b.toggle(ctx, a, id)
		}
	case cbEditTool:
		if hasID && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowEditTool, &dialog.Target{ToolID: id})
		}
	case cbDeleteTool:
		if hasID && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowDeleteTool, &dialog.Target{ToolID: id})
		}

	case cbMyBooking:
		if hasID {
			b.showBooking(ctx, a, id, false)
		}
	case cbOwnerBooking:
		if hasID && b.ownerOnly(a) {
			b.showBooking(ctx, a, id, true)
		}
	case cbBookingsPage:
		page, _ := argID(args, 0)
		if b.ownerOnly(a) {
			b.showBookings(ctx, a, int(page))
		}
	case cbCancelMyBooking:
		if hasID {
			b.start(ctx, a, dialog.FlowReview, &dialog.Target{BookingID: id, Status: bookings.StatusCancelled})
		}
	case cbSetStatus:
		if hasID && len(args) == 2 && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowReview, &dialog.Target{BookingID: id, Status: bookings.Status(args[1])})
		}
	case cbMessageBooking, cbReplyCustomer:
		if hasID {
			b.start(ctx, a, dialog.FlowMessage, &dialog.Target{BookingID: id})
		}
	case cbReplyUser:
		if hasID && b.ownerOnly(a) {
			b.start(ctx, a, dialog.FlowMessage, &dialog.Target{RecipientID: id})
		}

	default:
		b.onInput(ctx, a)
	}
}

func (b *Bot) showTools(ctx context.Context, a Action, page int, owner bool) {
	f := tools.Filter{OnlyAvailable: !owner}
	total, err := b.tools.Count(ctx, f)
	if err != nil {
		b.log.Error("count tools failed", "err", err)
		b.reply(a.ChatID, "⚠️ Failed to load tools.")
		return
	}
	if total == 0 {
		text := "No tools available right now."
		if owner {
			text = "No tools yet. Add one with /addtool"
		}
		b.show(a, view{text: text})
		return
	}
	pages := (total + b.toolsPerPage - 1) / b.toolsPerPage
	if page >= pages {
		page = pages - 1
	}
	list, err := b.tools.List(ctx, f, page*b.toolsPerPage, b.toolsPerPage)
	if err != nil {
		b.log.Error("list tools failed", "err", err)
		b.reply(a.ChatID, "⚠️ Failed to load tools.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧰 <b>Tools</b> (page %d/%d)\n", page+1, pages)
	if owner {
		sb.WriteString("\n")
		for _, t := range list {
			fmt.Fprintf(&sb, "%s %s · /edit_%d · /del_%d\n", badge(t.Available), esc(t.Name), t.ID, t.ID)
		}
	}
	b.show(a, withInline(sb.String(), toolListKeyboard(list, owner, page, total, b.toolsPerPage)))
}

func (b *Bot) showTool(ctx context.Context, a Action, id int64) {
	owner := b.isOwner(a.From.ID)
	t, err := b.tools.GetByID(ctx, id)
	if err != nil {
		b.log.Error("get tool failed", "err", err, "tool_id", id)
		b.reply(a.ChatID, "⚠️ Failed to load the tool.")
		return
	}
	if t == nil || (!owner && !t.Available) {
		b.reply(a.ChatID, "⚠️ This tool is no longer available.")
		return
	}
	v := withInline(toolCard(*t, owner), toolDetailKeyboard(*t, owner))
	if len(t.PhotoIDs) == 0 {
		b.show(a, v)
		return
	}
	b.sendPhotos(a.ChatID, t.PhotoIDs)
	b.sendView(a.ChatID, v)
}

func (b *Bot) sendPhotos(chatID int64, ids []string) {
	if len(ids) == 1 {
		b.send(tgbotapi.NewPhoto(chatID, tgbotapi.FileID(ids[0])))
		return
	}
	media := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id)))
	}
	if _, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		b.log.Error("send media group failed", "err", err)
	}
}

func (b *Bot) toggle(ctx context.Context, a Action, id int64) {
	available, err := b.tools.ToggleAvailable(ctx, id)
	if errors.Is(err, tools.ErrNotFound) {
		b.reply(a.ChatID, "⚠️ This tool no longer exists.")
		return
	}
	if err != nil {
		b.log.Error("toggle availability failed", "err", err, "tool_id", id)
		b.reply(a.ChatID, "⚠️ Failed to update the tool.")
		return
	}
	b.log.Info("tool availability toggled", "tool_id", id, "available", available)
	b.showTool(ctx, a, id)
}

func (b *Bot) showMyBookings(ctx context.Context, a Action) {
	list, err := b.bookings.List(ctx, bookings.Filter{UserID: a.From.ID}, 0, b.bookingsPerPage)
	if err != nil {
		b.log.Error("list bookings failed", "err", err, "user_id", a.From.ID)
		b.reply(a.ChatID, "⚠️ Failed to load bookings.")
		return
	}
	if len(list) == 0 {
		b.reply(a.ChatID, "You have no bookings yet. Browse /tools to book one.")
		return
	}
	b.show(a, withInline("📋 <b>Your bookings</b>", bookingListKeyboard(list, false, 0, len(list), b.bookingsPerPage)))
}

func (b *Bot) showBookings(ctx context.Context, a Action, page int) {
	total, err := b.bookings.Count(ctx, bookings.Filter{})
	if err != nil {
		b.log.Error("count bookings failed", "err", err)
		b.reply(a.ChatID, "⚠️ Failed to load bookings.")
		return
	}
	if total == 0 {
		b.show(a, view{text: "No bookings yet."})
		return
	}
	list, err := b.bookings.List(ctx, bookings.Filter{}, page*b.bookingsPerPage, b.bookingsPerPage)
	if err != nil {
		b.log.Error("list bookings failed", "err", err)
		b.reply(a.ChatID, "⚠️ Failed to load bookings.")
		return
	}
	text := fmt.Sprintf("📑 <b>Bookings</b> (%d total, newest first)", total)
	b.show(a, withInline(text, bookingListKeyboard(list, true, page, total, b.bookingsPerPage)))
}

func (b *Bot) showBooking(ctx context.Context, a Action, id int64, owner bool) {
	bk, err := b.bookings.GetByID(ctx, id)
	if err != nil {
		b.log.Error("get booking failed", "err", err, "booking_id", id)
		b.reply(a.ChatID, "⚠️ Failed to load the booking.")
		return
	}
	// чужие брони клиенту не показываем
	if bk == nil || (!owner && bk.UserID != a.From.ID) {
		b.reply(a.ChatID, "⚠️ Booking not found.")
		return
	}
	msgs, err := b.messages.ListByBooking(ctx, bk.ID)
	if err != nil {
		// карточку показываем и без переписки
		b.log.Warn("list booking messages failed", "err", err, "booking_id", bk.ID)
	}
	b.show(a, withInline(bookingCard(*bk, owner)+conversation(msgs), bookingActionsKeyboard(*bk, owner)))
}

func (b *Bot) collectStats(ctx context.Context) (*stats.Stats, error) {
	return stats.Collect(ctx, b.tools, b.bookings, b.users, b.today())
}

func (b *Bot) showStats(ctx context.Context, a Action) {
	s, err := b.collectStats(ctx)
	if err != nil {
		b.log.Error("stats failed", "err", err)
		b.reply(a.ChatID, "⚠️ Failed to collect statistics.")
		return
	}
	b.reply(a.ChatID, statsText(s))
}

func (b *Bot) export(ctx context.Context, a Action) {
	total, err := b.bookings.Count(ctx, bookings.Filter{})
	if err != nil {
		b.log.Error("export count failed", "err", err)
		b.reply(a.ChatID, "⚠️ Export failed.")
		return
	}
	list, err := b.bookings.List(ctx, bookings.Filter{}, 0, total)
	if err != nil {
		b.log.Error("export list failed", "err", err)
		b.reply(a.ChatID, "⚠️ Export failed.")
		return
	}
	s, err := b.collectStats(ctx)
	if err != nil {
		b.log.Warn("export without summary", "err", err)
	}
	data, err := report.BookingsXLSX(list, s)
	if err != nil {
		b.log.Error("export build failed", "err", err)
		b.reply(a.ChatID, "⚠️ Export failed.")
		return
	}
	doc := tgbotapi.NewDocument(a.ChatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("bookings_%s.xlsx", b.today().Format("20060102")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📤 %d booking(s)", len(list))
	b.send(doc)
}
