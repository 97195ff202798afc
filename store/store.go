package store

import (
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/db"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
	lru "github.com/hashicorp/golang-lru/v2"
)

const messageCacheSize = 4096

// Store is the Message Store of spec SS4.2: the verified, append-only set of
// messages received from one board, plus the secondary indices the
// predicate/datalog layer reads from. One Store wraps one db.Database per
// board; a Trustee holds one Store per board it is configured against.
type Store struct {
	db    db.Database
	cache *lru.Cache[artifact.Hash, message.Message]

	// cfg/cfgHash are set once the Configuration has been ingested (spec
	// SS4.4: "bootstrap"); before that, only a Configuration message
	// itself can be verified and ingested.
	cfg     *artifact.Configuration
	cfgHash artifact.Hash
}

// New wraps backend as a Message Store. backend must not be shared with any
// other Store.
func New(backend db.Database) (*Store, error) {
	cache, err := lru.New[artifact.Hash, message.Message](messageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: new message cache: %w", err)
	}
	return &Store{db: backend, cache: cache}, nil
}

// Configuration returns the bootstrap Configuration, or errs.ErrNotFound if
// the store has not yet ingested one.
func (s *Store) Configuration() (artifact.Configuration, error) {
	if s.cfg != nil {
		return *s.cfg, nil
	}
	msg, err := s.GetMessageByKind(message.StatementConfiguration, 0, artifact.ManagerPosition)
	if err != nil {
		return artifact.Configuration{}, err
	}
	cfg, err := decodeArtifact[artifact.Configuration](msg, artifact.KindConfiguration)
	if err != nil {
		return artifact.Configuration{}, err
	}
	s.cfg = &cfg
	s.cfgHash = msg.Statement.Body.ArtifactHash
	return cfg, nil
}

// HighestExternalID returns the highest board-assigned message id this store
// has recorded having ingested, for resuming a board poll (spec SS4.2,
// SS4.7: "highest_external_id").
func (s *Store) HighestExternalID() uint64 {
	raw, err := s.db.Get([]byte(keyHighestID))
	if err != nil {
		return 0
	}
	return decodeID(raw)
}

func (s *Store) setHighestExternalID(tx db.WriteTx, id uint64) error {
	current := s.HighestExternalID()
	if id <= current {
		return nil
	}
	return tx.Set([]byte(keyHighestID), encodeID(id))
}

func decodeArtifact[T any](msg message.Message, kind artifact.Kind) (T, error) {
	var zero T
	body := msg.ArtifactBytes
	a, err := artifact.DecodeByKind(kind, body)
	if err != nil {
		return zero, fmt.Errorf("%w: decode %s: %v", errs.ErrInternal, kind, err)
	}
	v, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: decoded %s has unexpected type %T", errs.ErrInternal, kind, a)
	}
	return v, nil
}
