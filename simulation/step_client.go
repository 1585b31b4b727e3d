package simulation

// stepClient runs one client tick: apply every authoritative update
// received since the last tick, then issue
// movement/fire requests for local input. Visual interpolation of the
// result is the interpolation package's job, driven off the movement
// rings and PendingTriggers this step populates.
func (w *World) stepClient() {
	w.drainInboundClient()
	w.issueLocalInput()
	w.emitPings()
}
