package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/braidcore/braid/message"
)

// ListPositions returns the sender positions that have posted a message of
// kind at batch, sorted ascending. Used by the predicate layer to discover
// which trustees (and possibly the verifier) have already acted, without
// needing to probe every position in [0,N) individually.
func (s *Store) ListPositions(kind message.StatementKind, batch uint64) ([]int, error) {
	prefix := []byte(fmt.Sprintf("%s%d/%d/", prefixPosition, kind, batch))
	var positions []int
	err := s.db.Iterate(prefix, func(key, _ []byte) bool {
		p, err := strconv.Atoi(string(key))
		if err == nil {
			positions = append(positions, p)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("store: list positions for %s batch %d: %w", kind, batch, err)
	}
	slices.Sort(positions)
	return positions, nil
}

// ListBatches returns the distinct batch numbers that have at least one
// message of kind, sorted ascending. Used to discover in-flight decryption
// batches without the caller tracking them separately.
func (s *Store) ListBatches(kind message.StatementKind) ([]uint64, error) {
	prefix := []byte(fmt.Sprintf("%s%d/", prefixPosition, kind))
	seen := map[uint64]bool{}
	err := s.db.Iterate(prefix, func(key, _ []byte) bool {
		parts := strings.SplitN(string(key), "/", 2)
		if len(parts) != 2 {
			return true
		}
		b, err := strconv.ParseUint(parts[0], 10, 64)
		if err == nil {
			seen[b] = true
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("store: list batches for %s: %w", kind, err)
	}
	batches := make([]uint64, 0, len(seen))
	for b := range seen {
		batches = append(batches, b)
	}
	slices.Sort(batches)
	return batches, nil
}

// ListMixSequences returns the mix sequence numbers recorded for batch,
// sorted ascending.
func (s *Store) ListMixSequences(batch uint64) ([]int, error) {
	prefix := []byte(fmt.Sprintf("%s%d/", prefixMix, batch))
	var sequences []int
	err := s.db.Iterate(prefix, func(key, _ []byte) bool {
		k, err := strconv.Atoi(string(key))
		if err == nil {
			sequences = append(sequences, k)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("store: list mix sequences for batch %d: %w", batch, err)
	}
	slices.Sort(sequences)
	return sequences, nil
}
