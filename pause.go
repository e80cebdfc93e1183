package main

import (
	"fmt"
	"os"

	"github.com/handsomefox/ridit/logging"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// pause waits for a key press so a console window opened just for the job
// doesn't close before the summary can be read. It does nothing if f isn't a terminal.
func pause(f *os.File) {
	if !logging.IsTerminal(f) {
		return
	}
	fmt.Print("Press any key to continue...")
	if err := waitForKey(f); err != nil {
		log.Debug().Err(err).Msg("failed to wait for a key")
	}
	fmt.Println()
}

// waitForKey reads a single key press from f in raw mode.
func waitForKey(f *os.File) error {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, state)

	b := make([]byte, 1)
	_, err = f.Read(b)
	return err
}
