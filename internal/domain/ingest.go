package domain

import "time"

// FailedURL is one batch item whose extraction did not produce a candidate.
type FailedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// BatchResult aggregates a ProcessBatch run. A batch with zero successes is
// still a normal result, not an error.
type BatchResult struct {
	Succeeded []ArticleCandidate `json:"succeeded"`
	Failed    []FailedURL        `json:"failed"`
}

// ItemResult is the per-candidate outcome of a commit.
type ItemResult struct {
	Slug            string  `json:"slug"`
	Success         bool    `json:"success"`
	FormatCorrected bool    `json:"format_corrected"`
	LeadValid       bool    `json:"lead_valid"`
	Error           *string `json:"error,omitempty"`
}

// CommitResult always reports both counts, even when one is zero.
// SuccessCount + ErrorCount equals the number of submitted candidates.
type CommitResult struct {
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
	Items        []ItemResult `json:"items"`
}

// IngestStats summarizes one scheduled ingestion run.
type IngestStats struct {
	Source    string
	Fetched   int
	Succeeded int
	Failed    int
	Committed int
	Errors    int
	Duration  time.Duration
}
