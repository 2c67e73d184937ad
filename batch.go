package praxis

import "unicode/utf8"

// TruncationMarker is appended to unit text that was cut to fit the hard
// character ceiling, so downstream stages (and readers of persisted
// artifacts) can tell the content is incomplete.
const TruncationMarker = "\n\n[content truncated]"

// defaultHardCharLimit bounds a single LLM payload when no explicit ceiling
// is configured. Matches the most conservative provider we target.
const defaultHardCharLimit = 50000

// BatchLimits describes the sizing rules for one target model.
type BatchLimits struct {
	// MaxContext is the model's maximum context size in characters.
	MaxContext int

	// OptimalChunk is the character budget per batch. It is deliberately
	// smaller than MaxContext to leave headroom for instructions and the
	// model's response; by convention about a quarter of the context.
	OptimalChunk int

	// HardCharLimit is the non-negotiable ceiling: no batch may exceed it
	// regardless of OptimalChunk.
	HardCharLimit int
}

// Normalize fills in defaults and clamps OptimalChunk under the hard limit.
func (l BatchLimits) Normalize() BatchLimits {
	if l.HardCharLimit <= 0 {
		l.HardCharLimit = defaultHardCharLimit
	}
	if l.MaxContext <= 0 {
		l.MaxContext = l.HardCharLimit
	}
	if l.OptimalChunk <= 0 {
		l.OptimalChunk = l.MaxContext / 4
	}
	if l.OptimalChunk > l.HardCharLimit {
		l.OptimalChunk = l.HardCharLimit
	}
	if l.OptimalChunk < 1 {
		l.OptimalChunk = 1
	}
	return l
}

// Batch is an ordered group of raw units packaged to fit one LLM call.
// Batches are transient pipeline artifacts and are never persisted.
type Batch struct {
	Units      []RawUnit
	CharBudget int
}

// Size returns the total content length of the batch.
func (b *Batch) Size() int {
	n := 0
	for i := range b.Units {
		n += unitSize(&b.Units[i])
	}
	return n
}

func unitSize(u *RawUnit) int {
	return len(u.Title) + len(u.Text)
}

// MakeBatches partitions units into batches that respect the limits.
// Unit order is preserved and batching is fully deterministic: identical
// input ordering and limits always yield identical boundaries.
//
// A unit whose content alone exceeds the hard limit is truncated with
// TruncationMarker rather than dropped. Batches are filled up to
// OptimalChunk; no batch ever exceeds HardCharLimit.
func MakeBatches(units []RawUnit, limits BatchLimits) []Batch {
	limits = limits.Normalize()

	var batches []Batch
	current := Batch{CharBudget: limits.OptimalChunk}
	currentSize := 0

	for _, u := range units {
		if unitSize(&u) > limits.HardCharLimit {
			u = truncateUnit(u, limits.HardCharLimit)
		}
		size := unitSize(&u)

		if len(current.Units) > 0 && currentSize+size > limits.OptimalChunk {
			batches = append(batches, current)
			current = Batch{CharBudget: limits.OptimalChunk}
			currentSize = 0
		}
		current.Units = append(current.Units, u)
		currentSize += size
	}

	if len(current.Units) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// truncateUnit cuts the unit text so title+text+marker fits within limit.
func truncateUnit(u RawUnit, limit int) RawUnit {
	budget := limit - len(u.Title) - len(TruncationMarker)
	if budget < 0 {
		// Pathological title; sacrifice it entirely.
		u.Title = ""
		budget = limit - len(TruncationMarker)
	}
	if budget < 0 {
		budget = 0
	}
	if len(u.Text) > budget {
		// Never cut a multibyte rune in half at the boundary.
		for budget > 0 && !utf8.RuneStart(u.Text[budget]) {
			budget--
		}
		u.Text = u.Text[:budget] + TruncationMarker
	}
	return u
}
