package quota

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Candidate is one incoming file in an upload batch: the name the
// client asked for and the size it declared before transfer.
type Candidate struct {
	RequestedName string
	DeclaredSize  int64
}

// Assignment maps a candidate's requested name to the name the blob
// will actually be stored under. SourceIndex is the candidate's
// position in the input slice, so callers holding a parallel slice
// (multipart headers) can pair each assignment with its source without
// re-deriving which candidates were dropped.
type Assignment struct {
	SourceIndex   int
	RequestedName string
	ResolvedName  string
}

// QuotaExceededError reports a refused batch together with the figures
// a client needs to show remaining headroom.
type QuotaExceededError struct {
	UsedBytes int64
	MaxBytes  int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d of %d bytes used", e.UsedBytes, e.MaxBytes)
}

// NameChecker answers whether a blob with the given name already exists
// under the storage root.
type NameChecker interface {
	Exists(filename string) bool
}

// Plan decides a whole upload batch at once. The quota pre-check covers
// every candidate before any name is resolved: a batch that would push
// usedBytes past maxBytes is refused in full with *QuotaExceededError.
//
// Accepted candidates get names resolved in input order against the
// storage root plus the names handed out earlier in the same batch: the
// sanitized name unchanged if free, otherwise stem_1.ext, stem_2.ext
// and so on. Candidates whose sanitized name comes out empty (a form
// submitted with no file chosen) are dropped entirely: no assignment,
// no size contribution.
//
// Plan has no side effects; the caller performs the blob writes and
// registry inserts in assignment order.
func Plan(usedBytes, maxBytes int64, candidates []Candidate, names NameChecker) ([]Assignment, error) {
	type keptCandidate struct {
		sourceIndex int
		sanitized   string
	}
	kept := make([]keptCandidate, 0, len(candidates))
	var batchSize int64
	for i, c := range candidates {
		sanitized := SecureFilename(c.RequestedName)
		if sanitized == "" {
			continue
		}
		kept = append(kept, keptCandidate{sourceIndex: i, sanitized: sanitized})
		batchSize += c.DeclaredSize
	}

	if usedBytes+batchSize > maxBytes {
		return nil, &QuotaExceededError{UsedBytes: usedBytes, MaxBytes: maxBytes}
	}

	assigned := make(map[string]bool, len(kept))
	taken := func(name string) bool {
		return assigned[name] || names.Exists(name)
	}

	assignments := make([]Assignment, 0, len(kept))
	for _, k := range kept {
		resolved := resolveCollision(k.sanitized, taken)
		assigned[resolved] = true
		assignments = append(assignments, Assignment{
			SourceIndex:   k.sourceIndex,
			RequestedName: candidates[k.sourceIndex].RequestedName,
			ResolvedName:  resolved,
		})
	}

	return assignments, nil
}

func resolveCollision(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		probe := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !taken(probe) {
			return probe
		}
	}
}
