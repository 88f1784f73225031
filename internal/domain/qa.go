package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Bounds is the inclusive valid range for one variable.
type Bounds struct {
	Low  float64
	High float64
}

// Check applies the range rule to one value. Missing and OutOfRange pass
// through untouched, so a sentinel is never re-flagged.
func (b Bounds) Check(v Value) Value {
	x, ok := v.Float()
	if !ok {
		return v
	}
	if x > b.High || x < b.Low {
		return OutOfRange()
	}
	return v
}

// Limits maps each QA variable to its bounds.
type Limits map[Variable]Bounds

// Validate reports a ConfigError if any QA variable lacks bounds or has
// inverted bounds.
func (l Limits) Validate() error {
	var missing []string
	for _, v := range QAVariables {
		b, ok := l[v]
		if !ok {
			missing = append(missing, string(v))
			continue
		}
		if b.Low > b.High {
			return &ConfigError{
				Field:  "variable." + string(v) + ".qa",
				Reason: fmt.Sprintf("low_limit %g is above high_limit %g", b.Low, b.High),
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ConfigError{Field: "variable", Reason: "missing qa limits for " + strings.Join(missing, ", ")}
	}
	return nil
}

// QAStats counts per-variable outcomes after a QA pass.
type QAStats map[Variable]map[Status]int

func (s QAStats) add(v Variable, st Status) {
	m, ok := s[v]
	if !ok {
		m = make(map[Status]int, 3)
		s[v] = m
	}
	m[st]++
}

// Engine applies range checks to merged records.
type Engine struct {
	limits Limits
}

// NewEngine builds a QA engine. The limits must cover every QA variable.
func NewEngine(limits Limits) (*Engine, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	cp := make(Limits, len(limits))
	for k, v := range limits {
		cp[k] = v
	}
	return &Engine{limits: cp}, nil
}

// CheckRecord returns the QA'd copy of rec. Variables without limits pass
// through. CHIL is flagged out of range when its own check fails or when the
// checked TAIR or WSPD is out of range.
func (e *Engine) CheckRecord(rec Record) Record {
	out := rec
	for _, v := range QAVariables {
		out.Set(v, e.limits[v].Check(rec.Get(v)))
	}
	if out.Tair.IsOutOfRange() || out.Wspd.IsOutOfRange() {
		out.Chil = OutOfRange()
	}
	return out
}

// Apply QA-checks a series. The input slice is not modified.
func (e *Engine) Apply(records []Record) ([]Record, QAStats) {
	stats := make(QAStats, len(QAVariables))
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = e.CheckRecord(rec)
		for _, v := range QAVariables {
			stats.add(v, out[i].Get(v).Status())
		}
	}
	return out, stats
}
