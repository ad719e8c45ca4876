// Package classify determines the mode of raw operator input: a multi-URL
// batch, a single URL, a structured submission, or free text.
package classify

import (
	"regexp"
	"strings"

	"editorial_ingest/internal/domain"
)

// Mode is the detected shape of a raw submission.
type Mode string

const (
	ModeBatchURL         Mode = "batch_url"
	ModeSingleURL        Mode = "single_url"
	ModeStructuredJSON   Mode = "structured_json"
	ModeManualStructured Mode = "manual_structured"
	ModePreserveOriginal Mode = "preserve_original"
	ModeFreeText         Mode = "free_text"
)

// MaxBatchURLs caps the number of URLs accepted in one batch submission.
const MaxBatchURLs = 10

// Classification carries the detected mode plus the data the mode needs:
// cleaned URLs for batch/single submissions, the payload for everything else.
type Classification struct {
	Mode    Mode
	URLs    []string
	Payload string
}

// keyword token -> structured mode. Matched case-insensitively against the
// first token of the input.
var keywordModes = map[string]Mode{
	"preserve-original": ModePreserveOriginal,
	"manual-structured": ModeManualStructured,
	"structured-json":   ModeStructuredJSON,
}

// enumeration markers like "1) ", "2. ", "3 - " in front of pasted URLs.
var enumPrefix = regexp.MustCompile(`^\d+\s*[.)\-:]\s*`)

// Classify inspects raw input and returns its mode. It is pure and
// deterministic: the same input always yields the same classification.
// Inputs with more than MaxBatchURLs URLs are rejected with a count-bearing
// error rather than silently truncated.
func Classify(raw string) (Classification, error) {
	trimmed := strings.TrimSpace(raw)

	urls := extractURLs(trimmed)
	if len(urls) >= 2 {
		if len(urls) > MaxBatchURLs {
			return Classification{}, &domain.BatchSizeError{Count: len(urls), Max: MaxBatchURLs}
		}
		return Classification{Mode: ModeBatchURL, URLs: urls}, nil
	}

	if mode, rest, ok := matchKeyword(trimmed); ok {
		return Classification{Mode: mode, Payload: rest}, nil
	}

	if isURL(trimmed) && !strings.ContainsAny(trimmed, " \t\n") {
		return Classification{Mode: ModeSingleURL, URLs: []string{trimmed}}, nil
	}

	// Unrecognized input is never a hard failure.
	return Classification{Mode: ModeFreeText, Payload: trimmed}, nil
}

func extractURLs(raw string) []string {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = enumPrefix.ReplaceAllString(line, "")
		if isURL(line) {
			urls = append(urls, line)
		}
	}
	return urls
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func matchKeyword(raw string) (Mode, string, bool) {
	token := raw
	if i := strings.IndexAny(raw, " \t\n"); i >= 0 {
		token = raw[:i]
	}
	mode, ok := keywordModes[strings.ToLower(token)]
	if !ok {
		return "", "", false
	}
	return mode, strings.TrimSpace(strings.TrimPrefix(raw, token)), true
}
