package safety

import (
	"regexp"
	"strings"
)

// Mode selects how aggressive the filter is. Each mode's rule set is a
// superset of the next weaker one: strict ⊇ moderate ⊇ permissive.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModeModerate   Mode = "moderate"
	ModePermissive Mode = "permissive"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(s)) {
	case ModeStrict, ModeModerate, ModePermissive:
		return Mode(strings.ToLower(s)), true
	}
	return "", false
}

type Outcome string

const (
	Accept Outcome = "accept"
	Reject Outcome = "reject"
)

// Verdict records the result of a single filter check. It is never mutated
// after creation; copies travel with the prompt and the stored artifact.
type Verdict struct {
	Outcome Outcome `json:"outcome"`
	RuleIDs []string `json:"rule_ids,omitempty"`
	Mode    Mode    `json:"mode"`
}

func (v Verdict) Accepted() bool { return v.Outcome == Accept }

// Rule is a single named check against prompt text.
type Rule struct {
	ID    string
	Match func(text string) bool
}

func TermRule(id string, terms ...string) Rule {
	return Rule{ID: id, Match: func(text string) bool {
		lower := strings.ToLower(text)
		for _, t := range terms {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}}
}

func PatternRule(id string, expr string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{ID: id, Match: re.MatchString}
}

// RequireRule rejects text that does NOT contain any of the given markers.
func RequireRule(id string, markers ...string) Rule {
	return Rule{ID: id, Match: func(text string) bool {
		lower := strings.ToLower(text)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return false
			}
		}
		return true
	}}
}

var (
	// Identifier patterns are rejected at every level, permissive included.
	identifierRules = []Rule{
		PatternRule("id-ssn", `\b\d{3}-\d{2}-\d{4}\b`),
		PatternRule("id-phone", `\b\d{10}\b`),
		PatternRule("id-mrn", `\b[A-Z]{2}\d{6}\b`),
		TermRule("id-terms", "mrn", "social security", "medical record"),
	}

	// Moderate adds terms that tie an image to a real person or institution.
	clinicalPIIRules = []Rule{
		TermRule("pii-person", "patient name", "date of birth", "dob"),
		TermRule("pii-site", "hospital", "clinic name", "address", "phone"),
	}

	// Strict adds the broad denylist plus the synthetic-marker requirement.
	strictRules = []Rule{
		TermRule("strict-person", "patient", "name"),
		RequireRule("strict-synthetic-marker", "synthetic", "simulated", "artificial"),
	}
)

// Policy is an ordered rule set for one mode. Policies are built by
// embedding the weaker mode's rules, so the superset contract holds by
// construction rather than by convention.
type Policy struct {
	Mode  Mode
	Rules []Rule
}

func policyFor(mode Mode) Policy {
	rules := append([]Rule{}, identifierRules...)
	if mode == ModeModerate || mode == ModeStrict {
		rules = append(rules, clinicalPIIRules...)
	}
	if mode == ModeStrict {
		rules = append(rules, strictRules...)
	}
	return Policy{Mode: mode, Rules: rules}
}

// Filter classifies prompts and generated payloads under a single mode.
type Filter struct {
	policy Policy
}

func NewFilter(mode Mode) *Filter {
	return &Filter{policy: policyFor(mode)}
}

// NewFilterFromPolicy builds a filter around a caller-supplied rule set.
// Rule content is deliberately swappable; only the mode ordering is fixed.
func NewFilterFromPolicy(policy Policy) *Filter {
	return &Filter{policy: policy}
}

func (f *Filter) Mode() Mode { return f.policy.Mode }

// Check classifies prompt text. A verdict with every triggered rule id is
// returned; the caller decides whether rejection aborts or skips.
func (f *Filter) Check(text string) Verdict {
	var triggered []string
	for _, r := range f.policy.Rules {
		if r.Match(text) {
			triggered = append(triggered, r.ID)
		}
	}
	if len(triggered) > 0 {
		return Verdict{Outcome: Reject, RuleIDs: triggered, Mode: f.policy.Mode}
	}
	return Verdict{Outcome: Accept, Mode: f.policy.Mode}
}
