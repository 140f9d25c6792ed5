// Package answerbank stores and retrieves answers for job-application
// questions. Answers are layered by exactness: exact normalized question
// text, canonical pattern keys shared by many wordings of the same question,
// and company-scoped custom answers. The bank is durable: every mutation is
// flushed to disk before the call returns.
package answerbank

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// QA is one stored question/answer pair, used for snapshots handed to the
// LLM semantic matcher.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// bankFile is the on-disk format: a JSON object with exactly these three
// top-level keys.
type bankFile struct {
	Exact    map[string]string            `json:"exact"`
	Patterns map[string]string            `json:"patterns"`
	Custom   map[string]map[string]string `json:"custom"`
}

// Bank is the persistent answer store. Safe for concurrent use.
type Bank struct {
	mu    sync.Mutex
	path  string
	floor float64
	data  bankFile
}

// Open loads the bank at path, creating an empty one if the file does not
// exist. floor is the minimum similarity ratio for fuzzy matching.
func Open(path string, floor float64) (*Bank, error) {
	b := &Bank{
		path:  path,
		floor: floor,
		data: bankFile{
			Exact:    make(map[string]string),
			Patterns: make(map[string]string),
			Custom:   make(map[string]map[string]string),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("answerbank: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &b.data); err != nil {
		return nil, fmt.Errorf("answerbank: parse %s: %w", path, err)
	}
	// Guard against hand-edited files with missing keys.
	if b.data.Exact == nil {
		b.data.Exact = make(map[string]string)
	}
	if b.data.Patterns == nil {
		b.data.Patterns = make(map[string]string)
	}
	if b.data.Custom == nil {
		b.data.Custom = make(map[string]map[string]string)
	}
	return b, nil
}

// Answer returns the stored answer for a question, consulting layers in
// order: exact normalized match, pattern-key match, company-scoped custom
// match, then fuzzy match against all exact answers at or above the
// similarity floor (highest ratio wins). company may be empty.
func (b *Bank) Answer(question, company string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	normalized := Normalize(question)

	if answer, ok := b.data.Exact[normalized]; ok {
		return answer, true
	}

	if key := PatternKey(question); key != "" {
		if answer, ok := b.data.Patterns[key]; ok {
			return answer, true
		}
	}

	if company != "" {
		if custom, ok := b.data.Custom[Normalize(company)]; ok {
			if answer, ok := custom[normalized]; ok {
				return answer, true
			}
		}
	}

	var best string
	bestRatio := b.floor
	found := false
	for storedQ, storedA := range b.data.Exact {
		if ratio := Similarity(normalized, storedQ); ratio > bestRatio {
			bestRatio = ratio
			best = storedA
			found = true
		}
	}
	return best, found
}

// ExactOrPattern checks only the exact and pattern layers. Dropdowns use
// this before the resolver falls through to fuzzier layers, since a wrong
// categorical answer is silent and expensive.
func (b *Bank) ExactOrPattern(question string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if answer, ok := b.data.Exact[Normalize(question)]; ok {
		return answer, true
	}
	if key := PatternKey(question); key != "" {
		if answer, ok := b.data.Patterns[key]; ok {
			return answer, true
		}
	}
	return "", false
}

// Store records an answer in the exact layer, or in the company's custom
// layer when company is non-empty, and flushes to disk before returning.
func (b *Bank) Store(question, answer, company string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	normalized := Normalize(question)
	if company != "" {
		key := Normalize(company)
		if b.data.Custom[key] == nil {
			b.data.Custom[key] = make(map[string]string)
		}
		b.data.Custom[key][normalized] = answer
	} else {
		b.data.Exact[normalized] = answer
	}
	return b.save()
}

// StorePattern records an answer under the question's pattern key so every
// future wording of the same question resolves to it. Falls back to the
// exact layer when the question matches no known pattern.
func (b *Bank) StorePattern(question, answer string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if key := PatternKey(question); key != "" {
		b.data.Patterns[key] = answer
	} else {
		b.data.Exact[Normalize(question)] = answer
	}
	return b.save()
}

// Delete removes a question from the exact layer. Used by the operator's
// answer-review surface.
func (b *Bank) Delete(question string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data.Exact, Normalize(question))
	return b.save()
}

// Snapshot returns a flattened copy of every stored pair across all layers,
// suitable for handing to the LLM semantic matcher.
func (b *Bank) Snapshot() []QA {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []QA
	for q, a := range b.data.Exact {
		out = append(out, QA{Question: q, Answer: a})
	}
	for k, a := range b.data.Patterns {
		out = append(out, QA{Question: k, Answer: a})
	}
	for _, custom := range b.data.Custom {
		for q, a := range custom {
			out = append(out, QA{Question: q, Answer: a})
		}
	}
	return out
}

// save writes the bank atomically via a temporary file. Caller holds b.mu.
func (b *Bank) save() error {
	raw, err := json.MarshalIndent(b.data, "", "  ")
	if err != nil {
		return fmt.Errorf("answerbank: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o750); err != nil {
		return fmt.Errorf("answerbank: init directory: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("answerbank: write temp file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("answerbank: atomic rename %s: %w", b.path, err)
	}
	slog.Debug("answerbank: saved", "path", b.path)
	return nil
}
