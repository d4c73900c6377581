package services

import (
	"fmt"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// PipelineService runs the aggregation pass: it loads the current store
// snapshot, computes the contributor and star histories and the rankings,
// and writes the dashboard artifacts.
type PipelineService struct {
	eventRepo      *repositories.EventRepository
	starRepo       *repositories.StarRepository
	repoRepo       *repositories.RepositoryRepository
	historyService *HistoryService
	rankingService *RankingService
	exportService  *ExportService
	startDate      time.Time
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(
	eventRepo *repositories.EventRepository,
	starRepo *repositories.StarRepository,
	repoRepo *repositories.RepositoryRepository,
	historyService *HistoryService,
	rankingService *RankingService,
	exportService *ExportService,
	startDate time.Time,
) *PipelineService {
	return &PipelineService{
		eventRepo:      eventRepo,
		starRepo:       starRepo,
		repoRepo:       repoRepo,
		historyService: historyService,
		rankingService: rankingService,
		exportService:  exportService,
		startDate:      startDate,
	}
}

// Run executes one aggregation pass as of now
func (s *PipelineService) Run(now time.Time) error {
	trackedRepos, err := s.repoRepo.GetTracked()
	if err != nil {
		return fmt.Errorf("failed to load tracked repositories: %w", err)
	}

	repoNames := make([]string, 0, len(trackedRepos))
	for _, repo := range trackedRepos {
		repoNames = append(repoNames, repo.Name)
	}

	events, err := s.eventRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load contribution events: %w", err)
	}

	stars, err := s.starRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load star events: %w", err)
	}

	starsByRepo := make(map[string][]*models.StarEvent)
	for _, star := range stars {
		starsByRepo[star.Repository] = append(starsByRepo[star.Repository], star)
	}

	contributorHistory := s.historyService.BuildContributorHistory(events, s.startDate, now)
	starHistory := s.historyService.BuildStarHistory(starsByRepo, repoNames, now)
	rankings := s.rankingService.Calculate(events, s.startDate, now)

	if err := s.exportService.WriteContributorHistory(contributorHistory); err != nil {
		return err
	}
	if err := s.exportService.WriteStarHistory(starHistory); err != nil {
		return err
	}
	if err := s.exportService.WriteRankings(rankings); err != nil {
		return err
	}
	if err := s.exportService.WriteHistoryWorkbook(contributorHistory, starHistory); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"events":       len(events),
		"stars":        len(stars),
		"repositories": len(repoNames),
	}).Info("aggregation pass completed")

	return nil
}
