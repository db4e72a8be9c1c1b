package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/pitch-post/app/database"
	"github.com/lysyi3m/pitch-post/app/job"
	"github.com/lysyi3m/pitch-post/app/rewrite"
	"github.com/lysyi3m/pitch-post/app/tasks"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func NewHandler(history database.HistoryRepository, settings database.SettingsRepository,
	runs database.RunRepository, events database.EventRepository, sources SourceCounter,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		history:   history,
		settings:  settings,
		runs:      runs,
		events:    events,
		sources:   sources,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"status":    "ok",
	}

	if count, err := h.history.GetCount(ctx); err == nil {
		health["published_total"] = count
	} else {
		slog.Error("Database error", "operation", "count_history", "error", err)
		health["status"] = "degraded"
	}

	if run, err := h.runs.GetLatestRun(ctx); err == nil && run != nil {
		health["last_run"] = toRunResponse(*run)
	}

	if h.sources != nil {
		health["loaded_sources"] = h.sources.GetConfigCount()
	}

	if h.scheduler != nil {
		health["scheduler"] = h.scheduler.Stats()
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSettings(c *gin.Context) {
	settings, err := h.settingValues(c)
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"settings": settings,
		"total":    len(settings),
	})
}

func (h *Handler) APIUpdateSetting(c *gin.Context) {
	name := c.Param("name")
	if !database.IsKnownSetting(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown setting", "known": database.KnownSettings})
		return
	}

	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	value, ok := normalizeSetting(name, req.Value)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty setting value"})
		return
	}

	if err := h.settings.Set(c.Request.Context(), name, value); err != nil {
		slog.Error("Database error", "operation", "set_setting", "setting", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Setting updated", "setting", name)

	c.JSON(http.StatusOK, settingResponse{Name: name, Configured: true, Value: maskSetting(name, value)})
}

func (h *Handler) APIDeleteSetting(c *gin.Context) {
	name := c.Param("name")
	if !database.IsKnownSetting(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown setting", "known": database.KnownSettings})
		return
	}

	if err := h.settings.Delete(c.Request.Context(), name); err != nil {
		slog.Error("Database error", "operation", "delete_setting", "setting", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Setting deleted", "setting", name)

	c.Status(http.StatusNoContent)
}

func (h *Handler) APIListRuns(c *gin.Context) {
	runs, err := h.runs.GetRuns(c.Request.Context(), parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, toRunResponse(run))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"runs":  result,
		"total": len(result),
	})
}

func (h *Handler) APIGetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, toRunResponse(*run))
}

func (h *Handler) APIListRunEvents(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	run, err := h.runs.GetRun(ctx, id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	events, err := h.events.GetRunEvents(ctx, id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run_events", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"run":    toRunResponse(*run),
		"events": toEventResponses(events),
		"total":  len(events),
	})
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if err := h.scheduler.TriggerRun(job.TriggerManual); err != nil {
		slog.Warn("Failed to enqueue manual run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue run", "message": err.Error()})
		return
	}

	slog.Info("Manual run enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Run enqueued",
		"trigger": job.TriggerManual,
	})
}

func (h *Handler) APIListEvents(c *gin.Context) {
	events, err := h.events.GetRecentEvents(c.Request.Context(), parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"events": toEventResponses(events),
		"total":  len(events),
	})
}

func (h *Handler) APIListHistory(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := h.history.GetRecent(ctx, parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]historyResponse, 0, len(articles))
	for _, a := range articles {
		result = append(result, toHistoryResponse(a))
	}

	response := map[string]interface{}{
		"articles": result,
	}
	if count, err := h.history.GetCount(ctx); err == nil {
		response["total"] = count
	}

	c.JSON(http.StatusOK, response)
}

// settingValues lists every known setting with its masked value.
func (h *Handler) settingValues(c *gin.Context) ([]settingResponse, error) {
	stored, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		return nil, err
	}

	byName := make(map[string]database.Setting, len(stored))
	for _, s := range stored {
		byName[s.Name] = s
	}

	result := make([]settingResponse, 0, len(database.KnownSettings))
	for _, name := range database.KnownSettings {
		response := settingResponse{Name: name}
		if s, ok := byName[name]; ok && s.Value != "" {
			updatedAt := s.UpdatedAt
			response.Configured = true
			response.Value = maskSetting(name, s.Value)
			response.UpdatedAt = &updatedAt
		}
		result = append(result, response)
	}

	return result, nil
}

// normalizeSetting trims a submitted value; a key list is stored one key per
// line. It reports false for a value that is empty after normalization.
func normalizeSetting(name, value string) (string, bool) {
	if name == database.SettingRewriterKeys {
		keys := rewrite.ParseKeys(value)
		return strings.Join(keys, "\n"), len(keys) > 0
	}

	value = strings.TrimSpace(value)
	return value, value != ""
}

func maskSetting(name, value string) string {
	if name == database.SettingRewriterKeys {
		keys := rewrite.ParseKeys(value)
		masked := make([]string, len(keys))
		for i, key := range keys {
			masked[i] = maskSecret(key)
		}
		return strings.Join(masked, ", ")
	}
	return maskSecret(value)
}

func maskSecret(value string) string {
	runes := []rune(value)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + "****" + string(runes[len(runes)-4:])
}

func toEventResponses(events []database.Event) []eventResponse {
	result := make([]eventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, toEventResponse(e))
	}
	return result
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
