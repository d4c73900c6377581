package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/internal/services"
)

// DashboardHandler serves the generated artifacts to the dashboard
type DashboardHandler struct {
	exportService    *services.ExportService
	schedulerService *services.SchedulerService
	repoRepo         *repositories.RepositoryRepository
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(
	exportService *services.ExportService,
	schedulerService *services.SchedulerService,
	repoRepo *repositories.RepositoryRepository,
) *DashboardHandler {
	return &DashboardHandler{
		exportService:    exportService,
		schedulerService: schedulerService,
		repoRepo:         repoRepo,
	}
}

// Contributors serves the contributor history artifact
func (h *DashboardHandler) Contributors(c *gin.Context) {
	h.serveArtifact(c, h.exportService.ContributorHistoryPath())
}

// Stars serves the star history artifact
func (h *DashboardHandler) Stars(c *gin.Context) {
	h.serveArtifact(c, h.exportService.StarHistoryPath())
}

// Rankings serves the rankings artifact
func (h *DashboardHandler) Rankings(c *gin.Context) {
	h.serveArtifact(c, h.exportService.RankingsPath())
}

// Repositories lists the currently tracked repositories
func (h *DashboardHandler) Repositories(c *gin.Context) {
	repos, err := h.repoRepo.GetTracked()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load repositories"})
		return
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)
	}

	c.JSON(http.StatusOK, gin.H{"repositories": names})
}

// Refresh enqueues a full fetch-and-aggregate run
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.schedulerService.ScheduleRefresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}

func (h *DashboardHandler) serveArtifact(c *gin.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not generated yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read artifact"})
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}
