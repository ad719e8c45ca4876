package domain

import "time"

// JobStatus is the extraction job state machine:
// queued -> processing -> {done | error}. Done and error are terminal.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Terminal reports whether no further transition can leave the status.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobError
}

// JobInputType distinguishes URL extraction from free-text normalization.
type JobInputType string

const (
	JobInputURL  JobInputType = "url"
	JobInputText JobInputType = "text"
)

// ExtractionJob is one unit of asynchronous extraction work. After enqueue the
// worker is the only writer of status, progress, result and error.
type ExtractionJob struct {
	ID            string            `json:"id"`
	InputType     JobInputType      `json:"input_type"`
	SourceContent string            `json:"source_content"`
	ImageHint     *string           `json:"image_hint,omitempty"`
	Status        JobStatus         `json:"status"`
	Progress      int               `json:"progress"`
	Result        *ArticleCandidate `json:"result,omitempty"`
	Error         *string           `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
