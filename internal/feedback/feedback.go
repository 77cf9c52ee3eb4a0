package feedback

import (
	"fmt"
	"os"
)

// Acknowledger signals a successful capture or login to the player.
// The signal is cosmetic: callers ignore failures and never let it
// affect a workflow outcome.
type Acknowledger interface {
	Ack() error
}

// Bell writes the terminal bell character to stdout.
type Bell struct{}

func NewBell() *Bell {
	return &Bell{}
}

func (b *Bell) Ack() error {
	_, err := fmt.Fprint(os.Stdout, "\a")
	return err
}

// Noop discards acknowledgments, for tests and headless runs.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Ack() error {
	return nil
}
