package eventlog

import (
	"slices"

	"github.com/ricki-pierce/integrating4Fears/internal/identity"
)

// Store owns the loaded log records and indexes them by trial key. It is not
// modified after construction and is safe for concurrent reads.
type Store struct {
	records []EventRecord
	byKey   map[identity.TrialKey][]int
}

// NewStore indexes records, keeping log order.
func NewStore(records []EventRecord) *Store {
	s := &Store{
		records: records,
		byKey:   make(map[identity.TrialKey][]int),
	}
	for i, r := range records {
		k := r.Key()
		s.byKey[k] = append(s.byKey[k], i)
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Keys returns the distinct trial keys in first-seen order.
func (s *Store) Keys() []identity.TrialKey {
	seen := make(map[identity.TrialKey]bool, len(s.byKey))
	var keys []identity.TrialKey
	for _, r := range s.records {
		k := r.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Trial is the subset of the log selected by one trial key.
type Trial struct {
	Key    identity.TrialKey
	Events []EventRecord
}

// Select returns the records of key in log order.
func (s *Store) Select(key identity.TrialKey) Trial {
	idx := s.byKey[key]
	t := Trial{Key: key, Events: make([]EventRecord, 0, len(idx))}
	for _, i := range idx {
		t.Events = append(t.Events, s.records[i])
	}
	return t
}

// Empty reports whether no record matched.
func (t Trial) Empty() bool {
	return len(t.Events) == 0
}

// Spellings returns the distinct raw "subject/task" spellings that normalized to
// the trial key. More than one means the log mixes case or white space variants.
func (t Trial) Spellings() []string {
	var out []string
	for _, e := range t.Events {
		s := e.Subject + "/" + e.Task
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Anchors returns the trial's anchor events in log order.
func (t Trial) Anchors(v *Vocabulary) []EventRecord {
	var out []EventRecord
	for _, e := range t.Events {
		if v.Classify(e.Label).Kind == Anchor {
			out = append(out, e)
		}
	}
	return out
}

// Qualifying returns the events whose label the vocabulary matches to frames, with
// their classification, in log order.
func (t Trial) Qualifying(v *Vocabulary) []Classified {
	var out []Classified
	for _, e := range t.Events {
		l := v.Classify(e.Label)
		if v.Qualifies(l) {
			out = append(out, Classified{Record: e, Label: l})
		}
	}
	return out
}

// Classified pairs a record with its label classification.
type Classified struct {
	Record EventRecord
	Label  Label
}
