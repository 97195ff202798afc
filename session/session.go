// Package session implements the SessionSet runtime of spec §4.7: a
// single-threaded cooperative loop that polls a board.Board transport for
// every board it owns a Trustee on, feeds newly-received messages through
// that Trustee's Step, and posts back whatever messages it produces.
//
// The loop's shape (context-scoped Start/Stop, a ticker goroutine, an inbox
// channel for mutating live state without a mutex) is grounded on the
// teacher's sequencer.Sequencer (sequencer/sequencer.go): Start derives a
// cancellable context and spawns one goroutine; Stop cancels it; membership
// changes arrive as messages rather than direct map mutation from other
// goroutines.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/braidcore/braid/board"
	"github.com/braidcore/braid/log"
	"github.com/braidcore/braid/store"
	"github.com/braidcore/braid/trustee"
)

// TickInterval is the polling period of spec §4.7 ("On each tick (~1s)").
var TickInterval = time.Second

// ResetPeriod is SESSION_RESET_PERIOD of spec §4.7: the period after which
// a SessionSet discards its in-memory Trustee and rebuilds it from the
// persistent store, to recover from transient state drift.
var ResetPeriod = 20 * time.Minute

// RebuildFunc constructs a fresh Trustee for name, reading any already
// persisted state back from disk. SessionSet calls it both to add a board
// and to recover from SESSION_RESET_PERIOD.
type RebuildFunc func(name string) (*trustee.Trustee, error)

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdShutdown
)

// command is the closed sum type carried on the inbox (spec §4.7: "Consume
// refresh/shutdown messages from its inbox").
type command struct {
	kind   commandKind
	boards []string // new board list, for cmdRefresh
}

// SessionSet is the per-process cooperative scheduler of spec §4.7.
type SessionSet struct {
	transport board.Board
	rebuild   RebuildFunc

	sessions map[string]*trustee.Trustee

	inbox  chan command
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a SessionSet with no boards yet attached; call Refresh (or
// send a refresh command after Start) to populate it.
func New(transport board.Board, rebuild RebuildFunc) *SessionSet {
	return &SessionSet{
		transport: transport,
		rebuild:   rebuild,
		sessions:  make(map[string]*trustee.Trustee),
		inbox:     make(chan command, 8),
	}
}

// Refresh queues a board-list update: boards not already tracked are added,
// tracked boards absent from names are dropped (spec §4.7: "A refresh with
// a board list adds sessions for new boards and removes sessions for boards
// no longer listed"). Safe to call before or after Start.
func (s *SessionSet) Refresh(names []string) {
	s.inbox <- command{kind: cmdRefresh, boards: names}
}

// Shutdown queues a Disconnected signal; the loop exits after completing
// its current tick (spec §5: "terminates the SessionSet loop after the
// current tick").
func (s *SessionSet) Shutdown() {
	s.inbox <- command{kind: cmdShutdown}
}

// Start runs the tick loop in a new goroutine until ctx is cancelled or
// Shutdown is called. It returns immediately; use Wait to block until the
// loop has exited.
func (s *SessionSet) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("session: context cannot be nil")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Stop cancels the loop's context; safe to call multiple times.
func (s *SessionSet) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until the tick loop has exited.
func (s *SessionSet) Wait() {
	if s.done != nil {
		<-s.done
	}
}

func (s *SessionSet) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	resetTicker := time.NewTicker(ResetPeriod)
	defer resetTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.inbox:
			if s.handleCommand(cmd) {
				return
			}
		case <-resetTicker.C:
			s.rebuildAll()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// handleCommand applies cmd and reports whether the loop should exit.
func (s *SessionSet) handleCommand(cmd command) bool {
	switch cmd.kind {
	case cmdShutdown:
		return true
	case cmdRefresh:
		s.applyBoardList(cmd.boards)
	}
	return false
}

func (s *SessionSet) applyBoardList(names []string) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
		if _, ok := s.sessions[name]; ok {
			continue
		}
		tr, err := s.rebuild(name)
		if err != nil {
			log.Errorw(err, fmt.Sprintf("session: add board %s", name))
			continue
		}
		s.sessions[name] = tr
		log.Infow("session: board added", "board", name)
	}
	for name := range s.sessions {
		if _, ok := wanted[name]; !ok {
			delete(s.sessions, name)
			log.Infow("session: board removed", "board", name)
		}
	}
}

func (s *SessionSet) rebuildAll() {
	for name := range s.sessions {
		tr, err := s.rebuild(name)
		if err != nil {
			log.Errorw(err, fmt.Sprintf("session: rebuild board %s", name))
			continue
		}
		s.sessions[name] = tr
	}
	log.Infow("session: periodic state rebuild complete", "boards", len(s.sessions))
}

// tick runs one pass of spec §4.7 steps 3-5: a batched fetch across every
// tracked board, per-board stepping (or update-store-only on truncation),
// and a single batched post of whatever the step produced.
func (s *SessionSet) tick(ctx context.Context) {
	if len(s.sessions) == 0 {
		return
	}

	last := make(map[string]uint64, len(s.sessions))
	for name, tr := range s.sessions {
		last[name] = tr.GetLastExternalID()
	}

	pages, err := s.transport.GetMessagesMulti(ctx, last)
	if err != nil {
		log.Warnw("session: get_messages_multi failed, will retry next tick", "err", err.Error())
		return
	}

	outgoing := make(map[string][]board.Envelope)
	totalBytes := 0

	for name, tr := range s.sessions {
		page, ok := pages[name]
		if !ok {
			continue
		}
		incoming := toBoardMessages(page.Messages)

		if page.Truncated {
			// spec §5: "MUST NOT run datalog/actions on a truncated read".
			if err := tr.UpdateStore(incoming); err != nil {
				log.Warnw("session: update_store failed on truncated read", "board", name, "err", err.Error())
			}
			continue
		}

		out, err := tr.Step(incoming)
		if err != nil {
			log.Warnw("session: step failed, will retry next tick", "board", name, "err", err.Error())
			continue
		}
		for _, m := range out {
			raw, version, err := m.MarshalWire()
			if err != nil {
				log.Errorw(err, fmt.Sprintf("session: encode outgoing message for board %s", name))
				continue
			}
			outgoing[name] = append(outgoing[name], board.Envelope{Bytes: raw, Version: version})
			totalBytes += len(raw)
		}
	}

	if len(outgoing) == 0 {
		return
	}

	correlationID := uuid.New()
	if err := s.transport.PutMessagesMulti(ctx, outgoing); err != nil {
		log.Warnw("session: put_messages_multi failed, will retry next tick", "correlation_id", correlationID.String(), "err", err.Error())
		return
	}
	log.Infow("session: tick posted outgoing messages", "correlation_id", correlationID.String(), "boards", len(outgoing), "bytes", totalBytes)
}

func toBoardMessages(envs []board.Envelope) []store.BoardMessage {
	out := make([]store.BoardMessage, 0, len(envs))
	for _, e := range envs {
		m, err := store.UnmarshalBoardEnvelope(e.ID, e.Bytes, e.Version)
		if err != nil {
			log.Warnw("session: dropping unparseable board envelope", "id", e.ID, "err", err.Error())
			continue
		}
		out = append(out, m)
	}
	return out
}
