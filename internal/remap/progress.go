package remap

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
)

// Phase is the human-readable per-object processing phase. Phases are
// observable output only, never control flow.
type Phase string

const (
	PhaseAnalyzing      Phase = "Analyzing"
	PhaseUpdateNeeded   Phase = "Update Needed"
	PhaseUpdated        Phase = "Updated"
	PhaseNoUpdateNeeded Phase = "No Update Needed"
	PhaseUpdateFailed   Phase = "Update Failed"
)

// ProgressReporter receives the progress stream of a run. index is
// 1-based and monotonically increasing within a category.
type ProgressReporter interface {
	StartCategory(kind cmplane.ObjectKind, total int)
	Object(index, total int, phase Phase, identity string)
	EndCategory(kind cmplane.ObjectKind)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) StartCategory(cmplane.ObjectKind, int) {}
func (NopReporter) Object(int, int, Phase, string)        {}
func (NopReporter) EndCategory(cmplane.ObjectKind)        {}

// BarReporter renders one progress bar per category.
type BarReporter struct {
	bar *progressbar.ProgressBar
}

func NewBarReporter() *BarReporter {
	return &BarReporter{}
}

func (r *BarReporter) StartCategory(kind cmplane.ObjectKind, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription(string(kind)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func (r *BarReporter) Object(index, total int, phase Phase, identity string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(fmt.Sprintf("%s: %s", phase, identity))
	// advance only when the object reaches a terminal phase
	if phase == PhaseUpdated || phase == PhaseNoUpdateNeeded || phase == PhaseUpdateFailed {
		_ = r.bar.Add(1)
	}
}

func (r *BarReporter) EndCategory(kind cmplane.ObjectKind) {
	if r.bar == nil {
		return
	}
	r.bar.Finish()
	fmt.Println()
	r.bar = nil
}
