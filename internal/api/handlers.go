package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sammywachtel/hardy-align/internal/align"
	"github.com/sammywachtel/hardy-align/internal/forcedaligner"
	"github.com/sammywachtel/hardy-align/internal/jobs"
	"github.com/sammywachtel/hardy-align/internal/models"
	"github.com/sammywachtel/hardy-align/internal/progress"
)

// Handler holds the dependencies for HTTP handlers
type Handler struct {
	jobManager *jobs.Manager
	aligner    *forcedaligner.Client
	cache      *forcedaligner.Cache
	hub        *progress.Hub
	thresholds align.Thresholds
}

// NewHandler creates a new handler instance
func NewHandler(jobManager *jobs.Manager, aligner *forcedaligner.Client, cache *forcedaligner.Cache, hub *progress.Hub) *Handler {
	return &Handler{
		jobManager: jobManager,
		aligner:    aligner,
		cache:      cache,
		hub:        hub,
		thresholds: align.DefaultThresholds(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:              "healthy",
		ReplicateConfigured: h.aligner != nil && h.aligner.IsConnected(),
	})
}

// Align handles POST /align. It converts the caller's segments and
// audio into HARDY's internal types, runs the forced-alignment backend
// and the orchestrator, and returns the reprojected segments.
func (h *Handler) Align(c *gin.Context) {
	var req models.AlignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	segments := make([]align.Segment, len(req.Segments))
	for i, s := range req.Segments {
		segments[i] = align.Segment{
			SpeakerID: s.SpeakerID,
			Text:      s.Text,
			StartMs:   s.StartMs,
			EndMs:     s.EndMs,
			Index:     i,
		}
	}

	words, err := h.resolveWords(c.Request.Context(), req.AudioBase64, req.LanguageHint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	job := h.jobManager.CreateJob(len(segments))

	aligned, err := h.jobManager.RunAlignment(job, segments, words, h.thresholds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "job_id": job.ID})
		return
	}

	stats := align.ComputeStats(aligned)
	resp := models.AlignResponse{
		JobID:             job.ID,
		AverageConfidence: stats.AverageConfidence,
		Segments:          make([]models.SegmentOutput, len(aligned)),
	}
	for i, seg := range aligned {
		resp.Segments[i] = models.SegmentOutput{
			SpeakerID:  seg.SpeakerID,
			Text:       seg.Text,
			StartMs:    seg.StartMs,
			EndMs:      seg.EndMs,
			Confidence: seg.Confidence,
			Method:     string(seg.Method),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// resolveWords fetches the forced-alignment word sequence for a piece
// of audio, consulting the content-addressed cache before calling out
// to the backend.
func (h *Handler) resolveWords(ctx context.Context, audioBase64, languageHint string) ([]align.Word, error) {
	hash := forcedaligner.HashAudio(audioBase64)
	if words, ok := h.cache.Get(hash); ok {
		return words, nil
	}

	if h.aligner == nil || !h.aligner.IsConnected() {
		return nil, errNoAligner
	}

	words, err := h.aligner.Align(ctx, audioBase64, languageHint)
	if err != nil {
		return nil, err
	}

	h.cache.Put(hash, words)
	return words, nil
}

var errNoAligner = errors.New("forced-alignment backend is not configured or not connected")

// ListJobs handles GET /jobs
func (h *Handler) ListJobs(c *gin.Context) {
	list := h.jobManager.ListJobs()
	out := make([]models.JobSummary, len(list))
	for i, j := range list {
		out[i] = models.JobSummary{
			ID:                j.ID,
			Status:            string(j.Status),
			SegmentCount:      j.SegmentCount,
			AverageConfidence: j.AverageConfidence,
			Error:             j.Error,
			CreatedAt:         j.CreatedAt,
			CompletedAt:       j.CompletedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetJob handles GET /jobs/:job_id
func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	job, ok := h.jobManager.GetJob(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, models.JobSummary{
		ID:                job.ID,
		Status:            string(job.Status),
		SegmentCount:      job.SegmentCount,
		AverageConfidence: job.AverageConfidence,
		Error:             job.Error,
		CreatedAt:         job.CreatedAt,
		CompletedAt:       job.CompletedAt,
	})
}

// GetJobLogs handles GET /jobs/:job_id/logs
func (h *Handler) GetJobLogs(c *gin.Context) {
	jobID := c.Param("job_id")
	logs, err := h.jobManager.GetLogs(jobID, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	out := make([]models.LogEntryResponse, len(logs))
	for i, l := range logs {
		out[i] = models.LogEntryResponse{Timestamp: l.Timestamp, Level: l.Level, Message: l.Message}
	}
	c.JSON(http.StatusOK, out)
}

// WebSocketJob handles GET /ws/jobs/:job_id
func (h *Handler) WebSocketJob(c *gin.Context) {
	h.hub.ServeJobWs(c, c.Param("job_id"))
}

// WebSocketStats handles GET /ws/stats
func (h *Handler) WebSocketStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_clients": h.hub.ClientCount(),
	})
}
