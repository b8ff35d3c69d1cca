package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/stats"
)

const (
	BookingsSheet = "Bookings"
	SummarySheet  = "Summary"
	dateLayout    = "2006-01-02"
)

var bookingHeader = []interface{}{
	"ID", "Created", "Customer", "Username", "User ID", "Tool",
	"Start", "End", "Days", "Delivery", "Address", "Status", "Total",
}

// BookingsXLSX собирает выгрузку броней; summary необязателен.
func BookingsXLSX(list []bookings.Booking, summary *stats.Stats) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), BookingsSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(BookingsSheet, "A1", &bookingHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	row := 2
	for _, b := range list {
		address := ""
		if b.DeliveryAddress != nil {
			address = *b.DeliveryAddress
		}
		delivery := "no"
		if b.DeliveryRequired {
			delivery = "yes"
		}
		excelRow := []interface{}{
			b.ID,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.FullName,
			b.Username,
			b.UserID,
			b.ToolName,
			b.StartDate.Format(dateLayout),
			b.EndDate.Format(dateLayout),
			b.Days(),
			delivery,
			address,
			string(b.Status),
			b.TotalPrice.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(BookingsSheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		row++
	}
	if row > 2 {
		if err := f.SetCellStyle(BookingsSheet, "M2", fmt.Sprintf("M%d", row-1), money); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(BookingsSheet, "C", "C", 20)
	_ = f.SetColWidth(BookingsSheet, "F", "F", 24)
	_ = f.SetColWidth(BookingsSheet, "K", "K", 30)

	if summary != nil {
		if err := writeSummary(f, summary, money); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, s *stats.Stats, money int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Tools", s.Tools},
		{"Available tools", s.AvailableTools},
		{"Customers", s.Customers},
		{"Registered customers", s.Registered},
		{"Bookings", s.Bookings},
	}
	for _, st := range stats.Statuses() {
		rows = append(rows, []interface{}{"Bookings " + string(st), s.ByStatus[st]})
	}
	rows = append(rows,
		[]interface{}{"Bookings this month", s.BookingsMonth},
		[]interface{}{"Revenue", s.Revenue.InexactFloat64()},
		[]interface{}{"Revenue this month", s.RevenueMonth.InexactFloat64()},
	)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return err
		}
	}
	last := len(rows)
	return f.SetCellStyle(SummarySheet, fmt.Sprintf("B%d", last-1), fmt.Sprintf("B%d", last), money)
}
