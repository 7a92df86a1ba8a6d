package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// osc52Clipboard copies text through the terminal, which works over SSH
// without a local clipboard tool
type osc52Clipboard struct {
	w      io.Writer
	getenv func(string) string
}

func newOSC52Clipboard(w io.Writer) osc52Clipboard {
	return osc52Clipboard{w: w, getenv: os.Getenv}
}

func (c osc52Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.sequence(text).WriteTo(c.w)
	return err
}

// sequence wraps the escape for terminal multiplexers that swallow it
func (c osc52Clipboard) sequence(text string) osc52.Sequence {
	seq := osc52.New(text)
	switch {
	case c.getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(c.getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	return seq
}
