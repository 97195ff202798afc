// Package board defines the bulletin-board transport contract of spec §6
// (consumed, not implemented, by this module: the board's storage backend
// and RPC server are an external collaborator) and a plain net/http client
// for it.
package board

import "context"

// Envelope is one message as it sits on the board: the board-assigned id
// used to resume polling, the canonical CBOR-encoded message.Message bytes,
// and the schema version carried alongside (spec §6: "Schema version is
// carried alongside; version mismatches MUST be rejected at ingest").
type Envelope struct {
	ID      uint64
	Bytes   []byte
	Version uint32
}

// Page is the response to a single-board GetMessages call (spec §6).
type Page struct {
	Messages  []Envelope
	Truncated bool
}

// Board is the consumed transport contract of spec §6. The bulletin board
// itself — its HTTP/RPC surface and storage backend — is out of scope (spec
// §1); this interface is the boundary this module's code is written against.
type Board interface {
	// GetMessages returns messages with id strictly greater than lastID, in
	// ascending id order, up to an unspecified size cap.
	GetMessages(ctx context.Context, name string, lastID uint64) (Page, error)
	// PutMessages appends msgs to name; failures are all-or-nothing.
	PutMessages(ctx context.Context, name string, msgs []Envelope) error
	// GetBoards lists every board name the transport currently knows.
	GetBoards(ctx context.Context) ([]string, error)
	// GetMessagesMulti is the batched variant of GetMessages, keyed by
	// board name, for SessionSet's per-tick fan-out (spec §4.7).
	GetMessagesMulti(ctx context.Context, last map[string]uint64) (map[string]Page, error)
	// PutMessagesMulti is the batched variant of PutMessages.
	PutMessagesMulti(ctx context.Context, outgoing map[string][]Envelope) error
}
