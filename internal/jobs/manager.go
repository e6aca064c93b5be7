// Package jobs tracks one record per alignment request: status, a
// capped log ring buffer, and summary statistics, mirroring how a
// long-running agent's lifecycle is tracked elsewhere in this stack but
// scoped to a single synchronous run of the alignment pipeline rather
// than a persistent connection.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sammywachtel/hardy-align/internal/align"
	"github.com/sammywachtel/hardy-align/internal/progress"
)

// Status is the lifecycle state of an alignment job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// LogEntry is one timestamped message in a job's log buffer.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Job is a single /align request's tracked record.
type Job struct {
	ID                string     `json:"id"`
	Status            Status     `json:"status"`
	SegmentCount      int        `json:"segment_count"`
	AverageConfidence float64    `json:"average_confidence,omitempty"`
	Error             string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// Manager tracks all jobs processed since startup, bounded to the most
// recent maxHistory entries so a long-running instance doesn't leak
// memory across thousands of requests.
type Manager struct {
	mu            sync.RWMutex
	jobs          map[string]*Job
	order         []string
	logBuffers    map[string][]LogEntry
	logBufferSize int
	maxHistory    int
	hub           *progress.Hub
}

// NewManager creates a job manager that publishes progress events to
// hub, which may be nil if live progress streaming isn't wired up.
func NewManager(hub *progress.Hub) *Manager {
	return &Manager{
		jobs:          make(map[string]*Job),
		logBuffers:    make(map[string][]LogEntry),
		logBufferSize: 500,
		maxHistory:    200,
		hub:           hub,
	}
}

// CreateJob registers a new pending job and returns it.
func (m *Manager) CreateJob(segmentCount int) *Job {
	job := &Job{
		ID:           uuid.NewString(),
		Status:       StatusPending,
		SegmentCount: segmentCount,
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	if len(m.order) > m.maxHistory {
		evict := m.order[0]
		m.order = m.order[1:]
		delete(m.jobs, evict)
		delete(m.logBuffers, evict)
	}
	m.mu.Unlock()

	return job
}

// RunAlignment runs HARDY's orchestrator for job, updating its status
// and publishing progress events as each level completes. It returns
// the aligned segments so the caller can shape the HTTP response
// without a second lookup.
func (m *Manager) RunAlignment(job *Job, segments []align.Segment, words []align.Word, th align.Thresholds) ([]align.AlignedSegment, error) {
	m.setStatus(job.ID, StatusRunning)
	m.addLogEntry(job.ID, "info", fmt.Sprintf("starting alignment for %d segments", len(segments)))

	onProgress := func(level, detail string) {
		m.addLogEntry(job.ID, "info", fmt.Sprintf("%s: %s", level, detail))
		if m.hub != nil {
			m.hub.Publish(progress.Event{
				JobID:     job.ID,
				Level:     level,
				Detail:    detail,
				Timestamp: time.Now().Unix(),
			})
		}
	}

	out, err := align.AlignWithOptions(segments, words, th, onProgress)
	if err != nil {
		m.addLogEntry(job.ID, "error", fmt.Sprintf("alignment failed: %v", err))
		m.fail(job.ID, err)
		return nil, err
	}

	stats := align.ComputeStats(out)
	m.complete(job.ID, stats.AverageConfidence)
	m.addLogEntry(job.ID, "info", fmt.Sprintf("alignment complete, average confidence %.3f", stats.AverageConfidence))

	return out, nil
}

func (m *Manager) setStatus(jobID string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
	}
}

func (m *Manager) complete(jobID string, avgConfidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		now := time.Now()
		job.Status = StatusCompleted
		job.AverageConfidence = avgConfidence
		job.CompletedAt = &now
	}
}

func (m *Manager) fail(jobID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		now := time.Now()
		job.Status = StatusFailed
		job.Error = err.Error()
		job.CompletedAt = &now
	}
}

// GetJob returns a job by ID.
func (m *Manager) GetJob(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	return job, ok
}

// ListJobs returns all tracked jobs, most recently created first.
func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.jobs[m.order[i]])
	}
	return out
}

// GetLogs returns up to lines most recent log entries for a job.
func (m *Manager) GetLogs(jobID string, lines int) ([]LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs, exists := m.logBuffers[jobID]
	if !exists {
		if _, ok := m.jobs[jobID]; !ok {
			return nil, fmt.Errorf("job not found")
		}
		return []LogEntry{}, nil
	}

	if lines <= 0 {
		lines = 200
	}
	if lines > m.logBufferSize {
		lines = m.logBufferSize
	}
	if lines >= len(logs) {
		lines = len(logs)
	}

	start := len(logs) - lines
	result := make([]LogEntry, lines)
	copy(result, logs[start:])
	return result, nil
}

func (m *Manager) addLogEntry(jobID, level, message string) {
	entry := LogEntry{Timestamp: time.Now(), Level: level, Message: message}

	m.mu.Lock()
	logs := append(m.logBuffers[jobID], entry)
	if len(logs) > m.logBufferSize {
		logs = logs[len(logs)-m.logBufferSize:]
	}
	m.logBuffers[jobID] = logs
	m.mu.Unlock()

	logrus.WithField("job_id", jobID).Debug(message)
}
