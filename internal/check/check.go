// Package check classifies raw probe outcomes into uniform check
// results and accumulates them into a per-host readiness report.
package check

import (
	"fmt"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// Classifier turns one probe outcome into a status and details text.
// Classifiers are pure functions: no classifier may depend on a
// previously appended result.
type Classifier func(o probe.Outcome) (report.Status, string)

// NotAvailable is the details text emitted for checks whose probe
// never ran. The record keeps the report schema identical across
// hosts regardless of which capability branches executed.
const NotAvailable = "not available"

// Definition binds a check name to the probe command that feeds it
// and the rule that classifies the outcome. Requires names a host
// capability; when it is absent the probe is skipped and the check
// resolves to INFO/"not available".
type Definition struct {
	Name     string
	Command  string
	Requires string
	Classify Classifier
}

// Aggregator appends classified results to a single report. It owns
// the report for the duration of one host run; callers append through
// Apply only, in probe definition order.
type Aggregator struct {
	rules map[string]Classifier
	rep   *report.Report
}

// NewAggregator builds an aggregator over the given rule set.
func NewAggregator(defs []Definition, rep *report.Report) *Aggregator {
	rules := make(map[string]Classifier, len(defs))
	for _, def := range defs {
		rules[def.Name] = def.Classify
	}
	return &Aggregator{rules: rules, rep: rep}
}

// Apply classifies the outcome under the named rule and appends the
// result. A name with no registered rule is a report schema
// inconsistency and the only error this type produces; probe failures
// themselves are classified, never returned as errors.
func (a *Aggregator) Apply(name string, o probe.Outcome) error {
	rule, ok := a.rules[name]
	if !ok {
		return fmt.Errorf("no classification rule registered for check %q", name)
	}

	if !o.Ran {
		a.rep.Append(report.CheckResult{
			Name:    name,
			Status:  report.StatusInfo,
			Details: NotAvailable,
		})
		return nil
	}

	status, details := rule(o)
	a.rep.Append(report.CheckResult{Name: name, Status: status, Details: details})
	return nil
}
