// Command orientcorrect rotates the horizontal components of one station
// recording by the azimuth deviation listed for that station and date.
//
//	orientcorrect <north_sac> <east_sac>
//
// Corrected copies are written as correct.<basename> to OUTPUT_DIR, which
// defaults to correct_traces next to the executable.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
