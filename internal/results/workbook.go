package results

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

const workbookSheet = "Postings"

var workbookHeader = []any{
	"Run", "Accepted At", "Title", "Score %", "First %", "Second %", "Duration", "Match %", "Reasoning",
}

// WorkbookSink mirrors accepted postings into an xlsx sheet, one row each.
// The file is saved after every row.
type WorkbookSink struct {
	path  string
	file  *excelize.File
	runID string
	next  int
}

// OpenWorkbook opens an existing workbook or prepares a new one.
func OpenWorkbook(path string) (*WorkbookSink, error) {
	var (
		f   *excelize.File
		err error
	)

	if _, statErr := os.Stat(path); statErr == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
	} else {
		f = excelize.NewFile()
	}

	if idx, _ := f.GetSheetIndex(workbookSheet); idx == -1 {
		idx, err := f.NewSheet(workbookSheet)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
		if err := f.SetSheetRow(workbookSheet, "A1", &workbookHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		if f.GetSheetName(0) == "Sheet1" {
			_ = f.DeleteSheet("Sheet1")
		}
	}

	rows, err := f.GetRows(workbookSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return &WorkbookSink{path: path, file: f, next: len(rows) + 1}, nil
}

func (s *WorkbookSink) Start(_ context.Context, runID string, _ time.Time) error {
	s.runID = runID
	return s.file.SaveAs(s.path)
}

func (s *WorkbookSink) Append(_ context.Context, p Posting) error {
	row := []any{
		s.runID,
		p.AcceptedAt.Format(time.RFC3339),
		OneLineTitle(p.Title),
		p.Seniority.Total(),
		p.Seniority.First,
		p.Seniority.Second,
		p.Duration.String(),
		"",
		"",
	}
	if p.Match != nil {
		row[7] = p.Match.MatchScore
		row[8] = p.Match.Reasoning
	}

	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		return err
	}
	if err := s.file.SetSheetRow(workbookSheet, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	s.next++

	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (s *WorkbookSink) Close() error {
	return s.file.Close()
}
