package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// extractProgress renders the per-file progress bar for extract runs.
type extractProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newExtractProgress(quiet bool, totalFiles int) *extractProgress {
	p := &extractProgress{quiet: quiet}
	if quiet || totalFiles == 0 {
		return p
	}
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Extracting files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	return p
}

func (p *extractProgress) fileDone() {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *extractProgress) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
