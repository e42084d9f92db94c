// Package identity derives the trial a capture file belongs to from its file name
// and normalizes trial keys for joining against the behavioral log.
package identity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

var (
	// <task>_Trial<N>_<subject>
	primaryPattern = regexp.MustCompile(`(?i)^(.+?)_Trial(\d+?)_(.+)$`)
	// <task>_trial[sep]<N>[sep]<subject>
	fallbackPattern = regexp.MustCompile(`(?i)^(.+?)_trial[_\- ]?(\d+)[_\- ]?(.+)$`)
)

// Identity is the trial a capture file was recorded for, as spelled in its name.
type Identity struct {
	Task    string
	Trial   int
	Subject string
}

// Key returns the normalized join key for the identity.
func (id Identity) Key() TrialKey {
	return NewTrialKey(id.Subject, id.Task, id.Trial)
}

func (id Identity) String() string {
	return fmt.Sprintf("task=%s trial=%d subject=%s", id.Task, id.Trial, id.Subject)
}

// ParseFilename extracts the identity from a capture file path. The extension and
// directory are ignored. It fails when neither naming pattern matches or the trial
// number is not a positive integer.
func ParseFilename(path string) (Identity, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	for _, pattern := range []*regexp.Regexp{primaryPattern, fallbackPattern} {
		m := pattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		trial, err := strconv.Atoi(m[2])
		if err != nil || trial < 1 {
			return Identity{}, identityError(path, "trial number must be a positive integer")
		}
		return Identity{Task: m[1], Trial: trial, Subject: m[3]}, nil
	}

	return Identity{}, identityError(path, "name does not match <task>_Trial<N>_<subject>")
}

// TrialKey joins log rows to capture files. Subject and task are normalized with
// NormalizeKey so it is comparable with ==.
type TrialKey struct {
	Subject string
	Task    string
	Trial   int
}

// NewTrialKey builds a normalized key.
func NewTrialKey(subject, task string, trial int) TrialKey {
	return TrialKey{Subject: NormalizeKey(subject), Task: NormalizeKey(task), Trial: trial}
}

func (k TrialKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Subject, k.Task, k.Trial)
}

// NormalizeKey trims surrounding white space and case-folds s.
func NormalizeKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func identityError(path, reason string) error {
	return errors.Newf("cannot derive trial identity from %q: %s", filepath.Base(path), reason).
		Component("identity").
		Category(errors.CategoryIdentity).
		FileContext(path).
		Context("reason", reason).
		Build()
}
