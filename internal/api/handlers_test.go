package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sammywachtel/hardy-align/internal/align"
	"github.com/sammywachtel/hardy-align/internal/forcedaligner"
	"github.com/sammywachtel/hardy-align/internal/jobs"
	"github.com/sammywachtel/hardy-align/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(cache *forcedaligner.Cache) *Handler {
	if cache == nil {
		cache = forcedaligner.NewCache(16)
	}
	return NewHandler(jobs.NewManager(nil), nil, cache, nil)
}

func doAlignRequest(t *testing.T, h *Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/align", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	h.Align(c)
	return rec
}

func TestAlignRejectsMissingSegments(t *testing.T) {
	h := newTestHandler(nil)
	rec := doAlignRequest(t, h, map[string]interface{}{
		"audio_base64": "YWJj",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing segments, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAlignRejectsMissingAudio(t *testing.T) {
	h := newTestHandler(nil)
	rec := doAlignRequest(t, h, map[string]interface{}{
		"segments": []map[string]interface{}{
			{"speakerId": "A", "text": "hello there"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing audio_base64, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAlignRejectsSegmentMissingSpeakerID(t *testing.T) {
	h := newTestHandler(nil)
	rec := doAlignRequest(t, h, map[string]interface{}{
		"audio_base64": "YWJj",
		"segments": []map[string]interface{}{
			{"text": "hello there"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when a segment omits speakerId, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAlignReturns500WhenBackendUnconfigured(t *testing.T) {
	h := newTestHandler(nil)
	rec := doAlignRequest(t, h, map[string]interface{}{
		"audio_base64": "YWJjZGVm",
		"segments": []map[string]interface{}{
			{"speakerId": "A", "text": "hello there", "startMs": 0, "endMs": 2000},
		},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 with no forced-alignment backend configured, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAlignHappyPathUsesCachedWords(t *testing.T) {
	cache := forcedaligner.NewCache(16)
	audio := "aGVsbG8gdGhlcmU="
	words := []align.Word{
		{Text: "hello", StartSec: 0.0, EndSec: 0.4, Index: 0},
		{Text: "there", StartSec: 0.4, EndSec: 0.9, Index: 1},
	}
	cache.Put(forcedaligner.HashAudio(audio), words)

	h := newTestHandler(cache)
	rec := doAlignRequest(t, h, map[string]interface{}{
		"audio_base64": audio,
		"segments": []map[string]interface{}{
			{"speakerId": "A", "text": "hello there", "startMs": 0, "endMs": 2000},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a cache-hit alignment, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AlignResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("expected a non-empty job_id")
	}
	if len(resp.Segments) != 1 {
		t.Fatalf("expected 1 segment in response, got %d", len(resp.Segments))
	}
	if resp.Segments[0].SpeakerID != "A" {
		t.Errorf("expected speakerId A, got %s", resp.Segments[0].SpeakerID)
	}
}

func TestHealthCheckReportsAlignerState(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	h.HealthCheck(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", resp.Status)
	}
	if resp.ReplicateConfigured {
		t.Error("expected replicate_configured false with no aligner wired")
	}
}

func TestGetJobNotFound(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/jobs/does-not-exist", nil)
	c.Params = gin.Params{{Key: "job_id", Value: "does-not-exist"}}

	h.GetJob(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", rec.Code)
	}
}
