// Package search builds an in-memory, typo-tolerant index over published
// content summaries and answers ranked queries.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/eringen/inkblog/content"
)

// DefaultThreshold accepts minor typos and partial words but rejects unrelated text.
const DefaultThreshold = 0.3

// Result limits used by the different search surfaces.
const (
	OverlayLimit = 5
	PageLimit    = 6
)

// Result is a ranked match. Score is in [0,1]; lower is better and 0 is exact.
type Result struct {
	Item  content.Summary
	Score float64
}

// Option configures an Index.
type Option func(*Index)

// WithThreshold sets the maximum score a match may have. Values are clamped to [0,1].
func WithThreshold(t float64) Option {
	return func(ix *Index) {
		switch {
		case t < 0:
			t = 0
		case t > 1:
			t = 1
		}
		ix.threshold = t
	}
}

type entry struct {
	item   content.Summary
	fields [][]string // normalised words per searchable text
	texts  []string   // normalised full text per searchable text
}

// Index is an immutable search structure. It is safe for concurrent use.
type Index struct {
	entries   []entry
	threshold float64
}

// Build indexes the published items. Unpublished items are dropped and can
// never appear in results.
func Build(items []content.Summary, opts ...Option) *Index {
	ix := &Index{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(ix)
	}
	for _, it := range items {
		if !it.Published {
			continue
		}
		texts := make([]string, 0, 2+len(it.Tags))
		texts = append(texts, normalize(it.Title), normalize(it.Description))
		for _, t := range it.Tags {
			texts = append(texts, normalize(t))
		}
		e := entry{item: it, texts: texts, fields: make([][]string, len(texts))}
		for i, t := range texts {
			e.fields[i] = strings.Fields(t)
		}
		ix.entries = append(ix.entries, e)
	}
	return ix
}

// Len returns the number of searchable items.
func (ix *Index) Len() int { return len(ix.entries) }

// Threshold returns the configured match threshold.
func (ix *Index) Threshold() float64 { return ix.threshold }

// Search returns matches best first. Equal scores keep index order. An empty
// or whitespace-only query yields no results.
func (ix *Index) Search(query string) []Result {
	q := normalize(query)
	if q == "" {
		return nil
	}
	qWords := strings.Fields(q)
	qLen := len([]rune(q))

	var out []Result
	for _, e := range ix.entries {
		best := 1.0
		for i, text := range e.texts {
			s := fieldScore(q, qWords, qLen, text, e.fields[i])
			if s < best {
				best = s
			}
			if best == 0 {
				break
			}
		}
		if best <= ix.threshold {
			out = append(out, Result{Item: e.item, Score: best})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// Top returns at most n results. It never allocates.
func Top(results []Result, n int) []Result {
	if n < 0 {
		n = 0
	}
	if len(results) > n {
		return results[:n]
	}
	return results
}

// fieldScore returns the normalised edit distance between the query and the
// closest run of words in a field.
func fieldScore(q string, qWords []string, qLen int, text string, words []string) float64 {
	if text == "" {
		return 1
	}
	if strings.Contains(text, q) {
		return 0
	}
	best := qLen
	span := len(qWords)
	for start := 0; start < len(words); start++ {
		for width := span; width <= span+1 && start+width <= len(words); width++ {
			window := strings.Join(words[start:start+width], " ")
			if d := fuzzy.LevenshteinDistance(q, window); d < best {
				best = d
			}
			if d := fuzzy.LevenshteinDistance(q, prefix(window, qLen)); d < best {
				best = d
			}
		}
		if span > len(words)-start {
			window := strings.Join(words[start:], " ")
			if d := fuzzy.LevenshteinDistance(q, window); d < best {
				best = d
			}
		}
	}
	score := float64(best) / float64(qLen)
	if score > 1 {
		score = 1
	}
	return score
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
