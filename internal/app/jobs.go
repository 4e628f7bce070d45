package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Stage     string `json:"stage,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`

	RunID string `json:"run_id,omitempty"`
}

// Job is a site audit running in the background.
type Job struct {
	ID        string        `json:"id"`
	Target    string        `json:"target"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	Result *Audit `json:"result,omitempty"`
}

// StartSiteJob runs AuditSite in the background. Progress and status
// changes are sent on the job's Events channel, which is closed when the
// job ends. Events are dropped when nobody reads them.
func (o *Orchestrator) StartSiteJob(ctx context.Context, target string) (*Job, error) {
	if target == "" {
		return nil, ErrEmptyTarget
	}
	job := &Job{
		ID:        uuid.New().String(),
		Target:    target,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 64),
	}

	// The job outlives the request that started it.
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.jobsMu.Lock()
	if o.jobs == nil {
		o.jobs = make(map[string]*Job)
		o.jobCancels = make(map[string]context.CancelFunc)
	}
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(job.ID, JobEvent{Type: JobEventStatus, Status: JobPending})

	go func() {
		defer o.endJob(job.ID)

		o.setStatus(job.ID, JobRunning, "")
		audit, err := o.AuditSite(jobCtx, target, func(stage string, done, total int) {
			o.emitJobEvent(job.ID, JobEvent{Type: JobEventProgress, Stage: stage, Processed: done, Total: total})
		})

		switch {
		case jobCtx.Err() != nil:
			o.setStatus(job.ID, JobCanceled, jobCtx.Err().Error())
		case err != nil:
			o.setStatus(job.ID, JobFailed, err.Error())
		default:
			o.jobsMu.Lock()
			job.Status = JobDone
			job.Result = audit
			o.jobsMu.Unlock()
			o.emitJobEvent(job.ID, JobEvent{Type: JobEventResult, Status: JobDone, RunID: audit.RunID})
		}
	}()

	return job, nil
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job.Events == nil {
		return
	}
	ev.JobID = jobID
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
	o.jobsMu.Unlock()
	o.emitJobEvent(jobID, JobEvent{Type: JobEventStatus, Status: status, Error: errMsg})
}

func (o *Orchestrator) endJob(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if cancel, ok := o.jobCancels[jobID]; ok {
		cancel()
		delete(o.jobCancels, jobID)
	}
	if j, ok := o.jobs[jobID]; ok {
		j.EndedAt = time.Now().UTC()
		close(j.Events)
	}
}

var ErrJobNotFound = errors.New("job not found")

// CancelJob stops a running job. Cancelling a finished job is a no-op.
func (o *Orchestrator) CancelJob(jobID string) error {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if _, ok := o.jobs[jobID]; !ok {
		return ErrJobNotFound
	}
	if cancel, ok := o.jobCancels[jobID]; ok {
		cancel()
	}
	return nil
}

// GetJob returns a snapshot of the job, without its event channel.
func (o *Orchestrator) GetJob(jobID string) (Job, error) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	cp := *j
	cp.Events = nil
	return cp, nil
}

// ListJobs returns snapshots of all jobs, newest first.
func (o *Orchestrator) ListJobs() []Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		cp := *j
		cp.Events = nil
		cp.Result = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].StartedAt.After(out[k].StartedAt) })
	return out
}
