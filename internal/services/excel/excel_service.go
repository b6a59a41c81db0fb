package excel

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nodegate/rpc-gateway-backend/internal/database/repository"
)

// Service builds Excel usage reports
type Service struct {
	usageRepo *repository.UsageRepository
}

// NewService creates a new Excel service instance
func NewService(usageRepo *repository.UsageRepository) *Service {
	return &Service{usageRepo: usageRepo}
}

// ExportAccountUsage renders an account's daily usage rows for the given
// range into a workbook. The caller streams it and closes it.
func (s *Service) ExportAccountUsage(ctx context.Context, accountID string, from, to time.Time) (*excelize.File, error) {
	rows, err := s.usageRepo.ListRange(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage rows: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Usage"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"Day", "Requests", "Success", "Errors", "Bytes In", "Bytes Out"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var totalRequests, totalSuccess, totalErrors, totalBytesIn, totalBytesOut int64
	for i, row := range rows {
		values := []interface{}{
			row.Day.Format("2006-01-02"),
			row.Requests,
			row.SuccessCount,
			row.ErrorCount,
			row.BytesIn,
			row.BytesOut,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write usage row: %w", err)
			}
		}
		totalRequests += row.Requests
		totalSuccess += row.SuccessCount
		totalErrors += row.ErrorCount
		totalBytesIn += row.BytesIn
		totalBytesOut += row.BytesOut
	}

	// Totals row below the data
	totals := []interface{}{"Total", totalRequests, totalSuccess, totalErrors, totalBytesIn, totalBytesOut}
	for j, value := range totals {
		cell, _ := excelize.CoordinatesToCellName(j+1, len(rows)+2)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write totals row: %w", err)
		}
	}

	return f, nil
}
