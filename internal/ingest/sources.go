package ingest

import (
	"net/url"
	"strings"
)

// SourceLookup maps known source hosts to display names. It is injected from
// configuration so the pipeline can be tested with fixture mappings.
type SourceLookup map[string]string

// NameFor derives a source name from an article URL. Unknown hosts and
// unparseable URLs yield nil.
func (l SourceLookup) NameFor(rawURL *string) *string {
	if rawURL == nil || len(l) == 0 {
		return nil
	}

	u, err := url.Parse(*rawURL)
	if err != nil || u.Host == "" {
		return nil
	}

	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	if name, ok := l[host]; ok {
		return &name
	}
	return nil
}
