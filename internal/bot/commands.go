package bot

// Команды.
const (
	cmdStart      = "start"
	cmdHelp       = "help"
	cmdMenu       = "menu"
	cmdCancel     = "cancel"
	cmdSkip       = "skip"
	cmdDone       = "done"
	cmdTools      = "tools"
	cmdMyBookings = "mybookings"
	cmdContact    = "contact"
	cmdOwner      = "owner"
	cmdAddTool    = "addtool"
	cmdListTools  = "listtools"
	cmdEditTool   = "edittool"
	cmdDelTool    = "deltool"
	cmdBookings   = "bookings"
	cmdStats      = "stats"
	cmdExport     = "export"

	// /edit_<id>, /del_<id>
	cmdEditPrefix = "edit_"
	cmdDelPrefix  = "del_"
)

// Callback data: имя и аргументы через ":".
const (
	cbIgnore         = "ignore"
	cbNav            = "nav"
	cbCalendar       = "calendar"
	cbCalendarNav    = "calendar_nav"
	cbCalendarCancel = "calendar_cancel"
	cbDeliveryYes    = "delivery_yes"
	cbDeliveryNo     = "delivery_no"
	cbSkip           = "skip"
	cbConfirmBooking = "confirm_booking"
	cbCancelBooking  = "cancel_booking"
	cbConfirmTool    = "confirm_tool"
	cbCancelTool     = "cancel_tool"
	cbPhotosDone     = "photos_done"
	cbEditField      = "edit_field"
	cbDoneEditing    = "done_editing"
	cbConfirmDelete  = "confirm_delete"
	cbCancelDelete   = "cancel_delete"
	cbConfirmReview  = "confirm_review"
	cbCancelReview   = "cancel_review"

	cbToolsPage       = "tools_page"
	cbOwnerToolsPage  = "owner_tools_page"
	cbToolDetail      = "tool_detail"
	cbBookTool        = "book_tool"
	cbToggleAvailable = "toggle_availability"
	cbEditTool        = "edit_tool"
	cbDeleteTool      = "delete_tool"
	cbMyBooking       = "my_booking"
	cbCancelMyBooking = "cancel_my_booking"
	cbMessageBooking  = "message_about_booking"
	cbOwnerBooking    = "owner_booking"
	cbSetStatus       = "set_status"
	cbReplyCustomer   = "reply_customer"
	cbReplyUser       = "reply_user"
	cbBookingsPage    = "bookings_page"
	cbMenu            = "menu"
)

// Кнопки нижнего меню.
const (
	btnTools      = "🧰 Tools"
	btnMyBookings = "📋 My bookings"
	btnContact    = "✉️ Contact owner"
	btnHelp       = "❓ Help"
	btnAddTool    = "➕ Add tool"
	btnManage     = "🛠 Manage tools"
	btnBookings   = "📑 Bookings"
	btnStats      = "📊 Stats"
	btnExport     = "📤 Export"
)

var menuCommands = map[string]string{
	btnTools:      cmdTools,
	btnMyBookings: cmdMyBookings,
	btnContact:    cmdContact,
	btnHelp:       cmdHelp,
	btnAddTool:    cmdAddTool,
	btnManage:     cmdListTools,
	btnBookings:   cmdBookings,
	btnStats:      cmdStats,
	btnExport:     cmdExport,
}
