package main

import (
	"fmt"
	"time"

	"github.com/handsomefox/ridit/downloader"
	"github.com/rs/zerolog/log"
)

const progressFormat = "Download status: Queued=%d; Saved=%d; Skipped=%d; Failed=%d"

// progressLoop prints the download status every second until stop is closed.
func progressLoop(dl *downloader.Downloader, verbose bool, stop <-chan struct{}) {
	var (
		last      downloader.Progress
		stringf   = progressFormat
		progprint = func(msg string) { log.Info().Msg(msg) }
	)

	if !verbose {
		// if no logging will be done, we can take control and print in a single line.
		stringf = progressFormat + "\r"
		progprint = func(msg string) { fmt.Print(msg) }
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			if !verbose {
				fmt.Println()
			}
			return
		case <-ticker.C:
			p := dl.Progress()
			if p != last {
				progprint(formatProgress(stringf, p))
				last = p
			}
		}
	}
}

func formatProgress(format string, p downloader.Progress) string {
	return fmt.Sprintf(format, p.Queued, p.Saved, p.Skipped, p.Failed)
}
