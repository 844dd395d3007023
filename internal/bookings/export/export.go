package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"staybook/pkg/model"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var Header = []string{
	"Reference",
	"Hotel",
	"Room Type",
	"Guest Name",
	"Email",
	"Check In",
	"Check Out",
	"Nights",
	"Total Price",
	"Created At",
}

var columnWidths = []float64{38, 28, 20, 24, 30, 12, 12, 8, 12, 22}

// BookingSheet accumulates bookings into a single-sheet workbook. Call Bytes
// once all pages are appended; it closes the underlying file.
type BookingSheet struct {
	f    *excelize.File
	row  int
	err  error
	done bool
}

func NewBookingSheet() *BookingSheet {
	s := &BookingSheet{f: excelize.NewFile(), row: 1}
	s.err = s.init()
	return s
}

func (s *BookingSheet) init() error {
	index, err := s.f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := s.f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	s.f.SetActiveSheet(index)

	headerStyle, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := s.f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := s.f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for col, width := range columnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column: %w", err)
		}
		if err := s.f.SetColWidth(SheetName, name, name, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func (s *BookingSheet) Append(bookings []*model.Booking) error {
	if s.err != nil {
		return s.err
	}

	for _, b := range bookings {
		s.row++
		cell, err := excelize.CoordinatesToCellName(1, s.row)
		if err != nil {
			s.err = fmt.Errorf("failed to convert coordinates: %w", err)
			return s.err
		}
		values := []any{
			b.Reference,
			b.HotelName,
			b.RoomType,
			b.GuestName,
			b.Email,
			b.CheckIn.Format(dateLayout),
			b.CheckOut.Format(dateLayout),
			b.Nights,
			b.TotalPrice,
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := s.f.SetSheetRow(SheetName, cell, &values); err != nil {
			s.err = fmt.Errorf("failed to write row %d: %w", s.row, err)
			return s.err
		}
	}
	return nil
}

// Rows is the number of booking rows written, header excluded.
func (s *BookingSheet) Rows() int {
	return s.row - 1
}

func (s *BookingSheet) Bytes() ([]byte, error) {
	if s.done {
		return nil, fmt.Errorf("booking sheet already written")
	}
	s.done = true
	defer s.f.Close()

	if s.err != nil {
		return nil, s.err
	}

	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
