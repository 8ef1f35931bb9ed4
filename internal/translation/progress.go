package translation

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

const progressWidth = 40

// progressBar draws a static bar on a single terminal line. A nil bar is
// silent.
type progressBar struct {
	w     io.Writer
	bar   progress.Model
	total int
}

func newProgressBar(w io.Writer, total int) *progressBar {
	if w == nil || total <= 0 {
		return nil
	}
	return &progressBar{
		w:     w,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		total: total,
	}
}

func (p *progressBar) step(done int, label string) {
	if p == nil {
		return
	}
	fmt.Fprintf(p.w, "\r%s %d/%d %s\x1b[K", p.bar.ViewAs(float64(done)/float64(p.total)), done, p.total, label)
}

func (p *progressBar) finish() {
	if p == nil {
		return
	}
	fmt.Fprintln(p.w)
}
