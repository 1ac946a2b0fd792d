package remap

import (
	"context"
	"errors"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
)

// ErrEmptyPattern rejects a run with nothing to search for.
var ErrEmptyPattern = errors.New("search pattern must not be empty")

// Orchestrator runs the six category processors in order against one site.
type Orchestrator struct {
	Client    cmplane.Client
	Validator TargetValidator
	Reporter  ProgressReporter
	DryRun    bool
}

// Execute remaps every content-bearing object whose recorded path contains
// pattern. The working context is established before any category runs and
// restored on every exit path. A context-establishment failure is fatal; a
// failure within one category does not prevent the remaining categories from
// running.
func (o *Orchestrator) Execute(ctx context.Context, pattern, replacement string) (*RunReport, error) {
	log := logger.Logger()
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	transform := NewTransform(pattern, replacement)
	validator := o.Validator
	if validator == nil {
		validator = FilesystemValidator{}
	}

	restore, err := o.Client.EnterSite(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			log.Warnf("Restoring prior context: %v", rerr)
		}
	}()

	report := &RunReport{
		Pattern:     pattern,
		Replacement: replacement,
		DryRun:      o.DryRun,
	}
	for _, source := range Sources(o.Client) {
		processor := &CategoryProcessor{
			Source:    source,
			Transform: transform,
			Validator: validator,
			Reporter:  o.Reporter,
			DryRun:    o.DryRun,
		}
		categoryReport, err := processor.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				report.Categories = append(report.Categories, categoryReport)
				return report, err
			}
			log.Errorf("Category %s failed: %v", source.Kind(), err)
			categoryReport.Err = err.Error()
		}
		report.Categories = append(report.Categories, categoryReport)
	}
	log.Infof("Remap finished: %d updated, %d failed", report.Updated(), report.Failed())
	return report, nil
}
