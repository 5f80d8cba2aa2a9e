package output

import (
	"fmt"
	"io"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// Progress prints one line per simulated day as it finishes
type Progress struct {
	w io.Writer
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// DayAdvanced satisfies simulation.DayObserver
func (p *Progress) DayAdvanced(r *dto.DayResult) {
	line := fmt.Sprintf("⏭  %s: +%d orders, %d released, %d received, %d completed",
		entities.FormatDate(r.PreviousDate), len(r.Created), len(r.Released), len(r.Received), len(r.Completed))
	if n := len(r.Failures); n > 0 {
		line += fmt.Sprintf(", %d failed", n)
	}
	if r.OverCapacity {
		line += fmt.Sprintf(" (warehouse over capacity: %d)", r.TotalStock)
	}
	fmt.Fprintln(p.w, line)
}
