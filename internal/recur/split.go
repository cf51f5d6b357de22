package recur

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const rrulePrefix = "RRULE:"

// SplitBefore returns a rule equivalent to the given RRULE body but bounded
// to end strictly before the split instant, expressed as an UNTIL clause one
// second before it. Any COUNT bound on the original rule is replaced by the
// UNTIL bound. The input and output both omit the "RRULE:" prefix.
func SplitBefore(rule string, at time.Time) (string, error) {
	opt, err := rrule.StrToROption(strings.TrimPrefix(rule, rrulePrefix))
	if err != nil {
		return "", fmt.Errorf("parse recurrence rule %q: %w", rule, err)
	}

	opt.Until = at.Add(-time.Second).UTC()
	opt.Count = 0

	return opt.RRuleString(), nil
}
