package store

import (
	"fmt"

	"github.com/braidcore/braid/message"
)

// UnmarshalBoardEnvelope decodes one board-delivered envelope (an external
// id, the wire bytes, and the schema version carried alongside it per spec
// SS6) into a BoardMessage ready for Ingest.
func UnmarshalBoardEnvelope(externalID uint64, data []byte, version uint32) (BoardMessage, error) {
	m, err := message.UnmarshalWire(data, version)
	if err != nil {
		return BoardMessage{}, fmt.Errorf("store: unmarshal board envelope %d: %w", externalID, err)
	}
	return BoardMessage{ExternalID: externalID, Message: m}, nil
}
