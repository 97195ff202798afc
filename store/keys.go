// Package store implements the per-board Message Store (spec SS4.2): an
// append-only set of verified messages with secondary indices by artifact
// hash, by (kind, batch, sender position), and by (kind, batch, mix
// sequence), backed by a db.Database and accelerated by an in-process LRU.
package store

import (
	"encoding/binary"
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/message"
)

// Key prefixes. One Store wraps one db.Database instance per board, so no
// board component is needed in the key itself.
const (
	prefixMessage  = "m/" // m/<artifact hash>            -> encoded Message
	prefixPosition = "p/" // p/<kind>/<batch>/<position>  -> artifact hash
	prefixMix      = "x/" // x/<batch>/<sequence>          -> artifact hash
	keyHighestID   = "meta/highest_id"
)

func messageKey(h artifact.Hash) []byte {
	return append([]byte(prefixMessage), h[:]...)
}

func positionKey(kind message.StatementKind, batch uint64, position int) []byte {
	return []byte(fmt.Sprintf("%s%d/%d/%d", prefixPosition, kind, batch, position))
}

func mixKey(batch uint64, sequence int) []byte {
	return []byte(fmt.Sprintf("%s%d/%d", prefixMix, batch, sequence))
}

func encodeID(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

func decodeID(buf []byte) uint64 {
	if len(buf) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(buf)
}
