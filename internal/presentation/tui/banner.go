package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Querent banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{`   ___                            _   `, "#38bdf8"},
		{`  / _ \ _   _  ___ _ __ ___ _ __ | |_ `, "#22d3ee"},
		{` | | | | | | |/ _ \ '__/ _ \ '_ \| __|`, "#2dd4bf"},
		{` | |_| | |_| |  __/ | |  __/ | | | |_ `, "#34d399"},
		{`  \__\_\\__,_|\___|_|  \___|_| |_|\__|`, "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Ask a question about your sales data. Type "quit" to exit.`)
	fmt.Fprintln(w)
}
