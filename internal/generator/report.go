package generator

import (
	"fmt"
	"time"

	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// DocumentResult records the outcome of one layout/paper combination.
type DocumentResult struct {
	Path   string
	Layout models.LayoutFamily
	Paper  models.PaperSize
	Pages  int
	Err    error
}

// RunReport summarizes a run for the final console output.
type RunReport struct {
	Pairs     int
	Cards     int
	Documents []DocumentResult
	Warnings  []string
	StartTime time.Time
	EndTime   time.Time
}

func (r *RunReport) Warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Succeeded returns the number of documents written without error.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, d := range r.Documents {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of combinations that were aborted.
func (r *RunReport) Failed() int {
	return len(r.Documents) - r.Succeeded()
}

// Print writes the summary through the run logger.
func (r *RunReport) Print(log *logger.Logger) {
	log.Info("Run complete in %s:", r.EndTime.Sub(r.StartTime).Round(time.Millisecond))
	log.Info("- Card pairs found: %d (%d placement(s) after replication)", r.Pairs, r.Cards)
	log.Info("- Documents created: %d", r.Succeeded())
	for _, d := range r.Documents {
		if d.Err == nil {
			log.Info("  %s: %d page(s)", d.Path, d.Pages)
		}
	}
	if failed := r.Failed(); failed > 0 {
		log.Info("- Combinations skipped: %d", failed)
		for _, d := range r.Documents {
			if d.Err != nil {
				log.Info("  %s on %s: %v", d.Layout, d.Paper.Name, d.Err)
			}
		}
	}
}
