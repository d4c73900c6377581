package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService(t *testing.T) {
	history := &models.ContributorHistory{
		Total:     []models.ContributorPoint{{Date: "2022-01-01", ContributorsCount: 1}},
		Code:      []models.ContributorPoint{{Date: "2022-01-01", ContributorsCount: 0}},
		Community: []models.ContributorPoint{{Date: "2022-01-01", ContributorsCount: 1}},
	}

	stars := models.StarHistory{
		models.StarHistoryTotalKey:          {{Date: "2022-01-01", StarCount: 2}},
		models.RepoStarHistoryKey("repoA"):  {{Date: "2022-01-01", StarCount: 2}},
		models.RepoStarHistoryKey("silent"): {},
	}

	t.Run("writes contributor history with fixed series keys", func(t *testing.T) {
		service := NewExportService(t.TempDir())
		require.NoError(t, service.WriteContributorHistory(history))

		data, err := os.ReadFile(service.ContributorHistoryPath())
		require.NoError(t, err)

		var decoded map[string][]models.ContributorPoint
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "total_contributors")
		assert.Contains(t, decoded, "code_contributors")
		assert.Contains(t, decoded, "community_contributors")
	})

	t.Run("writes star history preserving empty series keys", func(t *testing.T) {
		service := NewExportService(t.TempDir())
		require.NoError(t, service.WriteStarHistory(stars))

		data, err := os.ReadFile(service.StarHistoryPath())
		require.NoError(t, err)

		var decoded map[string][]models.StarPoint
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "total_stars_history")
		assert.Contains(t, decoded, "repoA_stars_history")
		assert.Contains(t, decoded, "silent_stars_history")
		assert.Empty(t, decoded["silent_stars_history"])
	})

	t.Run("writes rankings document", func(t *testing.T) {
		service := NewExportService(t.TempDir())
		doc := &models.RankingsDocument{
			LastUpdated: "2022-03-01T00:00:00Z",
			Monthly: map[string]*models.PeriodRankings{
				"2022-02": {
					Code:      []models.RankingEntry{{Rank: 1, Author: "alice", Count: 3}},
					Community: []models.RankingEntry{},
					Review:    []models.RankingEntry{},
					MVP:       []models.MVPEntry{},
				},
			},
			Yearly: map[string]*models.PeriodRankings{},
		}
		require.NoError(t, service.WriteRankings(doc))

		data, err := os.ReadFile(service.RankingsPath())
		require.NoError(t, err)

		var decoded models.RankingsDocument
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, doc.LastUpdated, decoded.LastUpdated)
		require.Contains(t, decoded.Monthly, "2022-02")
		assert.NotNil(t, decoded.Monthly["2022-02"].MVP)
	})

	t.Run("replaces artifacts whole on rewrite", func(t *testing.T) {
		service := NewExportService(t.TempDir())
		require.NoError(t, service.WriteContributorHistory(history))

		smaller := &models.ContributorHistory{
			Total:     []models.ContributorPoint{},
			Code:      []models.ContributorPoint{},
			Community: []models.ContributorPoint{},
		}
		require.NoError(t, service.WriteContributorHistory(smaller))

		data, err := os.ReadFile(service.ContributorHistoryPath())
		require.NoError(t, err)

		var decoded models.ContributorHistory
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Empty(t, decoded.Total)
	})

	t.Run("writes the history workbook", func(t *testing.T) {
		dir := t.TempDir()
		service := NewExportService(dir)
		require.NoError(t, service.WriteHistoryWorkbook(history, stars))

		f, err := excelize.OpenFile(filepath.Join(dir, "history.xlsx"))
		require.NoError(t, err)
		defer f.Close()

		assert.Contains(t, f.GetSheetList(), "Contributors")
		assert.Contains(t, f.GetSheetList(), "Stars")

		value, err := f.GetCellValue("Contributors", "A2")
		require.NoError(t, err)
		assert.Equal(t, "2022-01-01", value)
	})
}
