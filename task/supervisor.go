// Package task supervises a connection's transport worker: launches it,
// watches for an unclean exit, and revives it in place a bounded number
// of times. There is no pool to pull from or return to here, only one
// worker to keep alive for the life of one connection.
package task

import (
	"log/slog"
	"time"

	"skycheckers/network"
)

// MaxWorkerRestarts bounds how many times Supervise will relaunch a
// transport worker that exits via panic before giving up on the
// connection entirely.
const MaxWorkerRestarts = 3

// restartBackoff is how long Supervise waits before relaunching a
// crashed worker, so a tight crash loop doesn't spin the CPU.
const restartBackoff = 100 * time.Millisecond

// Supervise launches nc's transport worker in its own goroutine and
// keeps it running: a clean return (normal shutdown, nc.Done closes)
// ends supervision; a panic is recovered, logged, and the worker is
// relaunched on the same connection (queues and peer state intact) up
// to MaxWorkerRestarts times.
func Supervise(nc *network.NetworkConnection) {
	go func() {
		for attempt := 0; ; attempt++ {
			panicVal := runRecovered(nc)
			if panicVal == nil {
				slog.Info("transport worker exited cleanly", "session", nc.SessionID.String())
				return
			}

			slog.Error("transport worker panicked", "session", nc.SessionID.String(), "attempt", attempt, "panic", panicVal)

			if attempt >= MaxWorkerRestarts {
				slog.Error("transport worker exceeded restart budget, abandoning connection", "session", nc.SessionID.String())
				return
			}

			time.Sleep(restartBackoff)
			nc.Done = make(chan struct{})
		}
	}()
}

// runRecovered runs one attempt of the worker and converts a panic into
// a returned value instead of crashing the whole process.
func runRecovered(nc *network.NetworkConnection) (panicVal any) {
	defer func() {
		panicVal = recover()
	}()
	network.RunWorker(nc)
	return nil
}
