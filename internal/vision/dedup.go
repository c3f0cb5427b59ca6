package vision

import (
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	SimilarityThreshold = 0.8
	minTokenLength      = 3
)

// Similarity is the Jaccard index of the significant word sets of a and b.
// It is 0 when either side has no significant words.
func Similarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// ShouldAccept reports whether next differs enough from last to be emitted.
func ShouldAccept(next, last string) bool {
	return Similarity(next, last) <= SimilarityThreshold
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

type Deduplicator struct {
	mu   sync.Mutex
	last string
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Accept compares text against the last accepted analysis and, when it is
// materially different, remembers it as the new baseline.
func (d *Deduplicator) Accept(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !ShouldAccept(text, d.last) {
		return false
	}
	d.last = text
	return true
}

func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = ""
}

func (d *Deduplicator) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
