package eventlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

// LabelKind is the classified kind of an event label.
type LabelKind int

const (
	Unrecognized LabelKind = iota
	Milestone
	// Anchor is the milestone that marks the start of a recording.
	Anchor
	ButtonPressed
	ButtonReleased
	ControlLit
)

func (k LabelKind) String() string {
	switch k {
	case Milestone:
		return "milestone"
	case Anchor:
		return "anchor"
	case ButtonPressed:
		return "button-pressed"
	case ButtonReleased:
		return "button-released"
	case ControlLit:
		return "control-lit"
	default:
		return "unrecognized"
	}
}

// Label is a classified event label. ID carries the button or control number for
// the pattern kinds and is zero otherwise.
type Label struct {
	Kind LabelKind
	ID   int
	Text string
}

// Default vocabulary of the lab's logger scripts.
const (
	DefaultAnchorLabel     = "QTM Start Command Sent"
	DefaultLitPattern      = `(?i)LED_(\d+)_Lit`
	DefaultPressedPattern  = `(?i)#(\d+)\s*-\s*pressed`
	DefaultReleasedPattern = `(?i)#(\d+)\s*-\s*released`
)

// DefaultMilestones lists the milestone labels eligible for matching.
var DefaultMilestones = []string{
	"QTM Start Command Sent",
	"QTM Recording Started",
	"Beep Started",
}

// VocabularyConfig is the textual form of a Vocabulary.
type VocabularyConfig struct {
	AnchorLabel     string
	Milestones      []string
	LitPattern      string
	PressedPattern  string
	ReleasedPattern string
	IncludeReleased bool
}

// Vocabulary classifies labels and decides which ones are matched to frames.
type Vocabulary struct {
	anchor          string
	milestones      []string
	lit             *regexp.Regexp
	pressed         *regexp.Regexp
	released        *regexp.Regexp
	includeReleased bool
}

// DefaultVocabulary returns the vocabulary of the lab's logger scripts.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(VocabularyConfig{
		AnchorLabel:     DefaultAnchorLabel,
		Milestones:      DefaultMilestones,
		LitPattern:      DefaultLitPattern,
		PressedPattern:  DefaultPressedPattern,
		ReleasedPattern: DefaultReleasedPattern,
	})
	if err != nil {
		panic(err)
	}
	return v
}

// NewVocabulary compiles cfg. Empty patterns disable that kind; the anchor label is
// required.
func NewVocabulary(cfg VocabularyConfig) (*Vocabulary, error) {
	anchor := strings.TrimSpace(cfg.AnchorLabel)
	if anchor == "" {
		return nil, errors.ValidationError("anchor label must not be empty")
	}

	v := &Vocabulary{anchor: anchor, includeReleased: cfg.IncludeReleased}
	for _, m := range cfg.Milestones {
		if m = strings.TrimSpace(m); m != "" {
			v.milestones = append(v.milestones, m)
		}
	}

	var err error
	if v.lit, err = compilePattern("lit", cfg.LitPattern); err != nil {
		return nil, err
	}
	if v.pressed, err = compilePattern("pressed", cfg.PressedPattern); err != nil {
		return nil, err
	}
	if v.released, err = compilePattern("released", cfg.ReleasedPattern); err != nil {
		return nil, err
	}
	return v, nil
}

func compilePattern(name, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid %s pattern: %w", name, err)).
			Component("eventlog").
			Category(errors.CategoryConfiguration).
			Context("pattern", expr).
			Build()
	}
	return re, nil
}

// AnchorLabel returns the label of the start-time anchor event.
func (v *Vocabulary) AnchorLabel() string {
	return v.anchor
}

// Classify maps label text to its kind. Milestones compare trimmed and
// case-insensitively; the patterns search anywhere in the text. Releases are
// tested before presses so a pattern broad enough to match both stays unambiguous.
func (v *Vocabulary) Classify(text string) Label {
	s := strings.TrimSpace(text)
	l := Label{Kind: Unrecognized, Text: s}
	if s == "" {
		return l
	}

	if strings.EqualFold(s, v.anchor) {
		l.Kind = Anchor
		return l
	}
	for _, m := range v.milestones {
		if strings.EqualFold(s, m) {
			l.Kind = Milestone
			return l
		}
	}

	for _, p := range []struct {
		re   *regexp.Regexp
		kind LabelKind
	}{
		{v.released, ButtonReleased},
		{v.pressed, ButtonPressed},
		{v.lit, ControlLit},
	} {
		if p.re == nil {
			continue
		}
		if m := p.re.FindStringSubmatch(s); m != nil {
			l.Kind = p.kind
			if len(m) > 1 {
				l.ID, _ = strconv.Atoi(m[1])
			}
			return l
		}
	}
	return l
}

// Qualifies reports whether events with this label are matched to frames.
func (v *Vocabulary) Qualifies(l Label) bool {
	switch l.Kind {
	case Anchor, Milestone, ButtonPressed, ControlLit:
		return true
	case ButtonReleased:
		return v.includeReleased
	default:
		return false
	}
}
