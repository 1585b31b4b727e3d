// Package engine is the single entry point a collaborator (a renderer,
// an input layer, a headless bot) uses to host or join a match: it
// wires codec, reliability, network, task, simulation and
// interpolation together behind a narrow interface (on local input, on
// local quit, start host, start client, a periodic render callback, and
// an on sound event callback).
package engine

import (
	"errors"
	"log/slog"
	"time"

	"skycheckers/codec"
	"skycheckers/interpolation"
	"skycheckers/network"
	"skycheckers/simulation"
	"skycheckers/task"
)

// AIMode selects how many of the non-human slots a freshly hosted match
// fills with AI characters versus leaving open for other players.
type AIMode uint8

const (
	AIModeFillEmpty AIMode = iota // AI takes every slot no human has claimed yet
	AIModeNone                    // unfilled slots simply wait for a human to join
)

// Engine owns one World for the lifetime of one hosted or joined match.
type Engine struct {
	World  *simulation.World
	Interp *interpolation.Interpolator // nil when hosting (no render-time smoothing on the server)
	conn   *network.NetworkConnection
	stop   chan struct{}
}

// New returns an unstarted engine; call StartHost or StartClient before
// Run.
func New() *Engine {
	return &Engine{stop: make(chan struct{})}
}

// StartHost binds the well-known game port and begins hosting: the
// host's own character is PinkBubbleGum, numNetHumans more slots are
// reserved for CanIPlay joiners (marked Pending until they connect),
// and the rest are filled with AI immediately. mode is accepted for
// forward compatibility with a collaborator that wants unclaimed slots
// left empty rather than AI-filled; this engine always AI-fills them,
// matching AIModeFillEmpty, since a dynamically-growing lobby roster is
// out of scope here.
func (e *Engine) StartHost(numNetHumans, lives int, mode AIMode) error {
	if numNetHumans < 0 || numNetHumans > network.MaxPeers {
		return errors.New("engine: numNetHumans out of range")
	}
	sock, err := network.ListenServer(":" + codec.Port)
	if err != nil {
		return err
	}

	e.conn = network.NewServerConnection(sock, lives)
	e.World = simulation.NewWorld(true)
	e.World.Conn = e.conn
	e.World.ResetGame(lives, 1+numNetHumans)

	task.Supervise(e.conn)
	slog.Info("engine hosting", "session", e.conn.SessionID.String(), "netHumans", numNetHumans, "lives", lives, "aiMode", mode)
	return nil
}

// StartClient dials serverHost and begins the CanIPlay handshake;
// ServerAcceptance/ServerRejection arrive asynchronously through the
// World's inbound queue once RunWorker and the World's tick loop start.
func (e *Engine) StartClient(serverHost, localName string) error {
	sock, addr, err := network.DialClient(serverHost + ":" + codec.Port)
	if err != nil {
		return err
	}

	e.conn = network.NewClientConnection(sock, addr)
	e.World = simulation.NewWorld(false)
	e.World.Conn = e.conn
	e.Interp = interpolation.New(e.World)

	e.conn.Outbound.Push(codec.Message{
		Kind: codec.KindCanIPlay, PeerIndex: -1,
		Version: codec.ProtocolVersion, Name: localName,
	})

	task.Supervise(e.conn)
	slog.Info("engine joined", "session", e.conn.SessionID.String(), "server", serverHost)
	return nil
}

// Run blocks driving the World's fixed-tick loop (and, on the client,
// the interpolation step) until Stop is called.
func (e *Engine) Run() {
	if e.Interp != nil {
		renderer := e.World.OnRenderWorld
		lastRender := time.Now()
		e.World.OnRenderWorld = func(w *simulation.World) {
			now := time.Now()
			e.Interp.Step(now.UnixMilli(), now.Sub(lastRender).Seconds())
			lastRender = now
			if renderer != nil {
				renderer(w)
			}
		}
	}
	e.World.Run(e.stop)
}

// Stop ends Run's loop; it does not tear down the connection (OnLocalQuit does).
func (e *Engine) Stop() { close(e.stop) }

// OnLocalInput is the collaborator's movement/fire input callback.
func (e *Engine) OnLocalInput(dir codec.Direction, fire bool) {
	e.World.SetLocalDirection(dir)
	if fire {
		e.World.RequestLocalFire()
	}
}

// SetRenderWorld registers the periodic render callback, invoked once
// per Advance after its tick catch-up runs.
func (e *Engine) SetRenderWorld(fn func(w *simulation.World)) {
	e.World.OnRenderWorld = fn
}

// SetSoundEvent registers the sound-event callback.
func (e *Engine) SetSoundEvent(fn func(kind simulation.SoundKind)) {
	e.World.OnSoundEvent = fn
}

// OnLocalQuit sends Quit (broadcast on the server, unicast on the
// client) and tears the connection down once the worker exits.
func (e *Engine) OnLocalQuit() {
	if e.conn == nil {
		return
	}
	e.conn.Outbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})
	<-e.conn.Done
}
