package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	contributorHistoryFile = "contributors_history.json"
	starHistoryFile        = "stars_history.json"
	rankingsFile           = "rankings.json"
	historyWorkbookFile    = "history.xlsx"
)

// ExportService writes the pipeline outputs into the dashboard's data
// directory. Every artifact is replaced whole; there are no partial writes.
type ExportService struct {
	outputDir string
}

// NewExportService creates a new ExportService
func NewExportService(outputDir string) *ExportService {
	return &ExportService{outputDir: outputDir}
}

// WriteContributorHistory writes the contributor history artifact
func (s *ExportService) WriteContributorHistory(history *models.ContributorHistory) error {
	return s.writeJSON(contributorHistoryFile, history)
}

// WriteStarHistory writes the star history artifact
func (s *ExportService) WriteStarHistory(history models.StarHistory) error {
	return s.writeJSON(starHistoryFile, history)
}

// WriteRankings writes the rankings artifact
func (s *ExportService) WriteRankings(rankings *models.RankingsDocument) error {
	return s.writeJSON(rankingsFile, rankings)
}

// ContributorHistoryPath returns the path of the contributor history artifact
func (s *ExportService) ContributorHistoryPath() string {
	return filepath.Join(s.outputDir, contributorHistoryFile)
}

// StarHistoryPath returns the path of the star history artifact
func (s *ExportService) StarHistoryPath() string {
	return filepath.Join(s.outputDir, starHistoryFile)
}

// RankingsPath returns the path of the rankings artifact
func (s *ExportService) RankingsPath() string {
	return filepath.Join(s.outputDir, rankingsFile)
}

func (s *ExportService) writeJSON(name string, payload interface{}) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	logger.WithField("path", path).Infof("wrote artifact")
	return nil
}

// WriteHistoryWorkbook exports the contributor and star series as an XLSX
// workbook for offline analysis, one sheet per dataset
func (s *ExportService) WriteHistoryWorkbook(history *models.ContributorHistory, stars models.StarHistory) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeContributorSheet(f, history); err != nil {
		return err
	}
	if err := s.writeStarSheet(f, stars); err != nil {
		return err
	}

	// Drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	path := filepath.Join(s.outputDir, historyWorkbookFile)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.WithField("path", path).Infof("wrote workbook")
	return nil
}

func (s *ExportService) writeContributorSheet(f *excelize.File, history *models.ContributorHistory) error {
	const sheet = "Contributors"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []interface{}{"date", "total_contributors", "code_contributors", "community_contributors"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	// The three series share the same dense date axis; index code and
	// community by date and walk the total series.
	codeByDate := make(map[string]int, len(history.Code))
	for _, point := range history.Code {
		codeByDate[point.Date] = point.ContributorsCount
	}
	communityByDate := make(map[string]int, len(history.Community))
	for _, point := range history.Community {
		communityByDate[point.Date] = point.ContributorsCount
	}

	for i, point := range history.Total {
		row := []interface{}{point.Date, point.ContributorsCount, codeByDate[point.Date], communityByDate[point.Date]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func (s *ExportService) writeStarSheet(f *excelize.File, stars models.StarHistory) error {
	const sheet = "Stars"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	keys := make([]string, 0, len(stars))
	for key := range stars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"series", "date", "star_count"}); err != nil {
		return err
	}

	rowIndex := 2
	for _, key := range keys {
		for _, point := range stars[key] {
			cell, err := excelize.CoordinatesToCellName(1, rowIndex)
			if err != nil {
				return err
			}
			row := []interface{}{key, point.Date, point.StarCount}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
			rowIndex++
		}
	}

	return nil
}
