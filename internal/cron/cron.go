// Package cron validates 5-field cron expressions and decides whether a
// schedule is due for the current wall-clock minute.
package cron

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// InvalidExpressionError reports why a cron expression failed validation.
type InvalidExpressionError struct {
	Expr   string
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid cron expression %q: %s", e.Expr, e.Reason)
}

// macroReplacements maps unsupported macro forms to their explicit equivalent.
var macroReplacements = map[string]string{
	"@daily":   "0 0 * * *",
	"@weekly":  "0 0 * * 0",
	"@monthly": "0 0 1 * *",
	"@yearly":  "0 0 1 1 *",
}

type fieldSpec struct {
	name string
	min  int
	max  int
}

var fieldSpecs = [5]fieldSpec{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

// Validate checks a 5-field cron expression: minute hour day-of-month month
// day-of-week. Each field may be a wildcard, a single value, a comma list, a
// range (a-b) or a step (*/n). Macro forms are rejected with the explicit
// replacement named. Must be called before any schedule is persisted.
func Validate(expr string) error {
	trimmed := strings.TrimSpace(expr)

	if replacement, ok := macroReplacements[trimmed]; ok {
		return &InvalidExpressionError{
			Expr:   expr,
			Reason: fmt.Sprintf("macro %s is not supported, use %q instead", trimmed, replacement),
		}
	}
	if strings.HasPrefix(trimmed, "@") {
		return &InvalidExpressionError{
			Expr:   expr,
			Reason: "macro forms are not supported, use an explicit 5-field expression",
		}
	}

	fields := strings.Fields(trimmed)
	if len(fields) != 5 {
		return &InvalidExpressionError{
			Expr:   expr,
			Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields)),
		}
	}

	for i, field := range fields {
		if err := validateField(field, fieldSpecs[i]); err != nil {
			return &InvalidExpressionError{Expr: expr, Reason: err.Error()}
		}
	}

	// Final gate: anything that validates must also be evaluatable.
	if _, err := robfig.ParseStandard(trimmed); err != nil {
		return &InvalidExpressionError{Expr: expr, Reason: err.Error()}
	}

	return nil
}

func validateField(field string, spec fieldSpec) error {
	if field == "*" {
		return nil
	}

	// Step: */n, n unbounded
	if strings.HasPrefix(field, "*/") {
		if _, err := strconv.Atoi(field[2:]); err != nil {
			return fmt.Errorf("%s field: step %q is not an integer", spec.name, field)
		}
		return nil
	}

	// Range: a-b
	if strings.Contains(field, "-") {
		parts := strings.SplitN(field, "-", 2)
		start, err1 := strconv.Atoi(parts[0])
		end, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%s field: range %q must be two integers", spec.name, field)
		}
		if start < spec.min || start > spec.max || end < spec.min || end > spec.max {
			return fmt.Errorf("%s field: range %q out of bounds %d-%d", spec.name, field, spec.min, spec.max)
		}
		if start > end {
			return fmt.Errorf("%s field: range %q start exceeds end", spec.name, field)
		}
		return nil
	}

	// Comma list: every member must be a valid single value
	if strings.Contains(field, ",") {
		for _, member := range strings.Split(field, ",") {
			if err := validateSingle(member, spec); err != nil {
				return err
			}
		}
		return nil
	}

	return validateSingle(field, spec)
}

func validateSingle(value string, spec fieldSpec) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s field: %q is not an integer", spec.name, value)
	}
	if n < spec.min || n > spec.max {
		return fmt.Errorf("%s field: value %d out of bounds %d-%d", spec.name, n, spec.min, spec.max)
	}
	return nil
}

// IsDue reports whether the schedule fires during the wall-clock minute of
// now. All five fields are evaluated, so "0 3 * * *" and "0 3 15 * *"
// behave differently. The expression must have passed Validate.
func IsDue(expr string, now time.Time) bool {
	sched, err := robfig.ParseStandard(strings.TrimSpace(expr))
	if err != nil {
		return false
	}
	minute := now.Truncate(time.Minute)
	return sched.Next(minute.Add(-time.Second)).Equal(minute)
}

// FireGuard ensures a due schedule fires at most once per matched minute,
// even if multiple polling ticks observe the same minute.
type FireGuard struct {
	mu    sync.Mutex
	fired map[string]time.Time
}

// NewFireGuard creates an empty guard.
func NewFireGuard() *FireGuard {
	return &FireGuard{fired: make(map[string]time.Time)}
}

// TryFire atomically checks and marks the (action, minute) pair. Returns
// true exactly once per pair; callers only act on true. Marks older than one
// hour are purged on each call to bound memory.
func (g *FireGuard) TryFire(action string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, at := range g.fired {
		if now.Sub(at) > time.Hour {
			delete(g.fired, key)
		}
	}

	key := fmt.Sprintf("%s:%s", action, now.Format("2-1-2006-15-04"))
	if _, done := g.fired[key]; done {
		return false
	}
	g.fired[key] = now
	return true
}
