package safety

import (
	"fmt"
	"strings"
)

// Rejection is the per-item error raised when a check fails. It skips the
// current generation attempt; it never aborts the batch.
type Rejection struct {
	Stage   string // "prompt" or "image"
	Verdict Verdict
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("safety filter rejected %s under %s mode (rules: %s)",
		r.Stage, r.Verdict.Mode, strings.Join(r.Verdict.RuleIDs, ", "))
}
