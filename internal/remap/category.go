package remap

import (
	"context"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
)

// CategoryProcessor drives one category through the per-object state
// machine: Analyzing, then either NoChangeNeeded, or Validating followed by
// UpdateFailed or Committing/Updated. A single object's failure is recorded
// and iteration continues; the category never aborts on first failure.
type CategoryProcessor struct {
	Source    Source
	Transform Transform
	Validator TargetValidator
	Reporter  ProgressReporter
	// DryRun suppresses commits; objects that would update are counted as
	// updated and reported with the Updated phase.
	DryRun bool
}

// Run processes every object of the category. The returned error is
// non-nil only for enumeration failures; object-level failures land in the
// report.
func (p *CategoryProcessor) Run(ctx context.Context) (CategoryReport, error) {
	log := logger.Logger()
	report := CategoryReport{Kind: p.Source.Kind()}

	objects, err := p.Source.Objects(ctx)
	if err != nil {
		return report, err
	}
	report.Total = len(objects)

	reporter := p.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	reporter.StartCategory(report.Kind, len(objects))
	defer reporter.EndCategory(report.Kind)

	for i, obj := range objects {
		// cancellation is cooperative, checked once per object
		if err := ctx.Err(); err != nil {
			return report, err
		}
		index := i + 1
		identity := obj.Identity()
		reporter.Object(index, report.Total, PhaseAnalyzing, identity)

		paths, err := obj.Paths()
		if err != nil {
			log.Warnf("%s: %v", report.Kind, err)
			report.Failures = append(report.Failures, Failure{Identity: identity, Reason: err.Error()})
			reporter.Object(index, report.Total, PhaseUpdateFailed, identity)
			continue
		}

		results := make([]Result, len(paths))
		anyChanged := false
		for j, path := range paths {
			results[j] = p.Transform.Apply(path)
			anyChanged = anyChanged || results[j].Changed
		}

		if !anyChanged {
			report.Skipped++
			reporter.Object(index, report.Total, PhaseNoUpdateNeeded, identity)
			continue
		}
		reporter.Object(index, report.Total, PhaseUpdateNeeded, identity)

		// validation gates the commit: no commit call is made for an object
		// with a missing target
		if missing, ok := p.validate(results); !ok {
			verr := &ValidationError{Identity: identity, Path: missing}
			log.Warnf("%s: %v", report.Kind, verr)
			report.Failures = append(report.Failures, Failure{Identity: identity, Reason: verr.Error()})
			reporter.Object(index, report.Total, PhaseUpdateFailed, identity)
			continue
		}

		if p.DryRun {
			report.Updated++
			reporter.Object(index, report.Total, PhaseUpdated, identity)
			continue
		}

		if err := obj.Commit(ctx, results); err != nil {
			cerr := &CommitError{Identity: identity, Err: err}
			log.Warnf("%s: %v", report.Kind, cerr)
			report.Failures = append(report.Failures, Failure{Identity: identity, Reason: cerr.Error()})
			reporter.Object(index, report.Total, PhaseUpdateFailed, identity)
			continue
		}
		report.Updated++
		reporter.Object(index, report.Total, PhaseUpdated, identity)
	}
	return report, nil
}

// validate checks every changed proposal. It returns the first missing path
// and false when validation fails; no-op paths are never probed.
func (p *CategoryProcessor) validate(results []Result) (string, bool) {
	for _, res := range results {
		if !res.Changed {
			continue
		}
		if !p.Validator.Exists(res.Proposed) {
			return res.Proposed, false
		}
	}
	return "", true
}

// CategoryReport is one category's outcome.
type CategoryReport struct {
	Kind     cmplane.ObjectKind `json:"kind"`
	Total    int                `json:"total"`
	Updated  int                `json:"updated"`
	Skipped  int                `json:"skipped"`
	Failures []Failure          `json:"failures,omitempty"`
	// Err is set when the category could not be enumerated at all.
	Err string `json:"error,omitempty"`
}

// Failure attributes one object-level failure.
type Failure struct {
	Identity string `json:"identity"`
	Reason   string `json:"reason"`
}
