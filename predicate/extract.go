package predicate

import (
	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/message"
	"github.com/braidcore/braid/store"
)

// Set is the full collection of predicates extracted from one store's
// contents at a point in time (spec §4.3: "the inputs to datalog are
// exactly: one bootstrap predicate from the Configuration itself, plus one
// predicate per verified message").
type Set struct {
	Configuration Configuration

	ConfigurationSigned map[int]ConfigurationSigned
	Channel              map[int]Channel
	ChannelsSigned       map[int]ChannelsSigned
	Shares               map[int]Shares
	PublicKey            map[int]PublicKey
	PublicKeySigned      map[int]PublicKeySigned

	// Ballots, Mix, MixSigned, DecryptionFactors, Plaintexts and
	// PlaintextsSigned are all scoped to a decryption batch.
	Ballots map[uint64]Ballots
	// Mix/MixSigned are keyed by sequence then position: several mixers
	// never legitimately collide on the same sequence, but a conflicting
	// board can still produce two different Mix artifacts at the same
	// sequence (spec §4.4's "conflicting artifact" halt condition).
	Mix               map[uint64]map[int]map[int]Mix
	MixSigned         map[uint64]map[int]map[int]MixSigned
	DecryptionFactors map[uint64]map[int]DecryptionFactors
	Plaintexts        map[uint64]map[int]Plaintexts
	PlaintextsSigned  map[uint64]map[int]PlaintextsSigned
}

func newSet() *Set {
	return &Set{
		ConfigurationSigned: map[int]ConfigurationSigned{},
		Channel:             map[int]Channel{},
		ChannelsSigned:      map[int]ChannelsSigned{},
		Shares:              map[int]Shares{},
		PublicKey:           map[int]PublicKey{},
		PublicKeySigned:     map[int]PublicKeySigned{},
		Ballots:             map[uint64]Ballots{},
		Mix:                 map[uint64]map[int]map[int]Mix{},
		MixSigned:           map[uint64]map[int]map[int]MixSigned{},
		DecryptionFactors:   map[uint64]map[int]DecryptionFactors{},
		Plaintexts:          map[uint64]map[int]Plaintexts{},
		PlaintextsSigned:    map[uint64]map[int]PlaintextsSigned{},
	}
}

// Extract builds the full predicate Set from st for selfPosition (the
// extracting trustee's own position, or artifact.VerifierPosition). It
// returns errs.ErrNotFound wrapped if no Configuration has been bootstrapped
// yet.
func Extract(st *store.Store, selfPosition int) (*Set, error) {
	cfg, cfgHash, err := configurationOf(st)
	if err != nil {
		return nil, err
	}
	s := newSet()
	s.Configuration = Configuration{Hash: cfgHash, Cfg: cfg, Position: selfPosition}

	if err := extractConfigurationSigned(st, s, cfgHash); err != nil {
		return nil, err
	}
	if err := extractChannels(st, s, cfgHash, cfg.N()); err != nil {
		return nil, err
	}
	if err := extractShares(st, s, cfgHash, cfg.N()); err != nil {
		return nil, err
	}
	if err := extractPublicKeys(st, s, cfgHash, cfg.N()); err != nil {
		return nil, err
	}
	if err := extractBallotsAndBatches(st, s, cfgHash); err != nil {
		return nil, err
	}
	return s, nil
}

func configurationOf(st *store.Store) (artifact.Configuration, artifact.Hash, error) {
	cfg, err := st.Configuration()
	if err != nil {
		return artifact.Configuration{}, artifact.Hash{}, err
	}
	msg, err := st.GetMessageByKind(message.StatementConfiguration, 0, artifact.ManagerPosition)
	if err != nil {
		return artifact.Configuration{}, artifact.Hash{}, err
	}
	return cfg, msg.Statement.Body.ArtifactHash, nil
}

func extractConfigurationSigned(st *store.Store, s *Set, cfgHash artifact.Hash) error {
	positions, err := st.ListPositions(message.StatementConfigurationSigned, 0)
	if err != nil {
		return err
	}
	for _, p := range positions {
		msg, err := st.GetMessageByKind(message.StatementConfigurationSigned, 0, p)
		if err != nil {
			continue
		}
		if msg.Statement.Body.ArtifactHash != cfgHash {
			continue
		}
		s.ConfigurationSigned[p] = ConfigurationSigned{ConfigHash: cfgHash, Position: p}
	}
	return nil
}

func extractChannels(st *store.Store, s *Set, cfgHash artifact.Hash, n int) error {
	for p := 0; p < n; p++ {
		if msg, err := st.GetMessageByKind(message.StatementChannel, 0, p); err == nil {
			s.Channel[p] = Channel{ConfigHash: cfgHash, ChannelHash: msg.Statement.Body.ArtifactHash, Position: p}
		}
	}
	positions, err := st.ListPositions(message.StatementChannelsSigned, 0)
	if err != nil {
		return err
	}
	allChannelHashes := channelHashVector(s, n)
	for _, p := range positions {
		msg, err := st.GetMessageByKind(message.StatementChannelsSigned, 0, p)
		if err != nil {
			continue
		}
		if !hashVectorEqual(msg.Statement.Body.ChannelHashes, allChannelHashes) {
			continue
		}
		s.ChannelsSigned[p] = ChannelsSigned{ConfigHash: cfgHash, ChannelHashes: allChannelHashes, Position: p}
	}
	return nil
}

func extractShares(st *store.Store, s *Set, cfgHash artifact.Hash, n int) error {
	for p := 0; p < n; p++ {
		if msg, err := st.GetMessageByKind(message.StatementShares, 0, p); err == nil {
			s.Shares[p] = Shares{ConfigHash: cfgHash, SharesHash: msg.Statement.Body.ArtifactHash, Position: p}
		}
	}
	return nil
}

func extractPublicKeys(st *store.Store, s *Set, cfgHash artifact.Hash, n int) error {
	allShareHashes := sharesHashVector(s, n)
	for p := 0; p < n; p++ {
		if msg, err := st.GetMessageByKind(message.StatementPublicKey, 0, p); err == nil {
			s.PublicKey[p] = PublicKey{
				ConfigHash:    cfgHash,
				PkHash:        msg.Statement.Body.ArtifactHash,
				SharesHashes:  allShareHashes,
				ChannelHashes: channelHashVector(s, n),
				Position:      p,
			}
		}
	}
	positions, err := st.ListPositions(message.StatementPublicKeySigned, 0)
	if err != nil {
		return err
	}
	for _, p := range positions {
		msg, err := st.GetMessageByKind(message.StatementPublicKeySigned, 0, p)
		if err != nil {
			continue
		}
		s.PublicKeySigned[p] = PublicKeySigned{ConfigHash: cfgHash, PkHash: msg.Statement.Body.ArtifactHash, Position: p}
	}
	return nil
}

func extractBallotsAndBatches(st *store.Store, s *Set, cfgHash artifact.Hash) error {
	batches, err := st.ListBatches(message.StatementBallots)
	if err != nil {
		return err
	}
	for _, batch := range batches {
		msg, err := st.GetMessageByKind(message.StatementBallots, batch, artifact.ManagerPosition)
		if err != nil {
			continue
		}
		ballots, err := st.GetBallots(batch)
		if err != nil {
			continue
		}
		s.Ballots[batch] = Ballots{
			ConfigHash:  cfgHash,
			Batch:       batch,
			BallotsHash: msg.Statement.Body.ArtifactHash,
			PkHash:      ballots.DkgPublicKey,
			TrusteeSet:  ballots.TrusteeSet,
		}
		if err := extractMixChain(st, s, cfgHash, batch); err != nil {
			return err
		}
		if err := extractDecryptPhase(st, s, cfgHash, batch); err != nil {
			return err
		}
	}
	return nil
}

func extractMixChain(st *store.Store, s *Set, cfgHash artifact.Hash, batch uint64) error {
	sequences, err := st.ListMixSequences(batch)
	if err != nil {
		return err
	}
	if len(sequences) > 0 {
		s.Mix[batch] = map[int]map[int]Mix{}
	}
	for _, k := range sequences {
		msg, err := st.GetMix(batch, k)
		if err != nil {
			continue
		}
		p := msg.Statement.Body.Position
		if s.Mix[batch][k] == nil {
			s.Mix[batch][k] = map[int]Mix{}
		}
		s.Mix[batch][k][p] = Mix{
			ConfigHash: cfgHash,
			Batch:      batch,
			SourceHash: msg.Statement.Body.SourceHash,
			OutputHash: msg.Statement.Body.ArtifactHash,
			Sequence:   k,
			Position:   p,
		}
	}

	positions, err := st.ListPositions(message.StatementMixSigned, batch)
	if err != nil {
		return err
	}
	if len(positions) > 0 {
		s.MixSigned[batch] = map[int]map[int]MixSigned{}
	}
	for _, p := range positions {
		msg, err := st.GetMessageByKind(message.StatementMixSigned, batch, p)
		if err != nil {
			continue
		}
		k := msg.Statement.Body.Sequence
		if s.MixSigned[batch][k] == nil {
			s.MixSigned[batch][k] = map[int]MixSigned{}
		}
		s.MixSigned[batch][k][p] = MixSigned{
			ConfigHash: cfgHash,
			Batch:      batch,
			SourceHash: msg.Statement.Body.SourceHash,
			OutputHash: msg.Statement.Body.ArtifactHash,
			Sequence:   k,
			Position:   p,
		}
	}
	return nil
}

func extractDecryptPhase(st *store.Store, s *Set, cfgHash artifact.Hash, batch uint64) error {
	positions, err := st.ListPositions(message.StatementDecryptionFactors, batch)
	if err != nil {
		return err
	}
	if len(positions) > 0 {
		s.DecryptionFactors[batch] = map[int]DecryptionFactors{}
	}
	for _, p := range positions {
		msg, err := st.GetMessageByKind(message.StatementDecryptionFactors, batch, p)
		if err != nil {
			continue
		}
		s.DecryptionFactors[batch][p] = DecryptionFactors{
			ConfigHash:  cfgHash,
			Batch:       batch,
			FactorsHash: msg.Statement.Body.ArtifactHash,
			SourceHash:  msg.Statement.Body.SourceHash,
			Position:    p,
		}
	}

	plaintextPositions, err := st.ListPositions(message.StatementPlaintexts, batch)
	if err != nil {
		return err
	}
	if len(plaintextPositions) > 0 {
		s.Plaintexts[batch] = map[int]Plaintexts{}
	}
	for _, p := range plaintextPositions {
		msg, err := st.GetMessageByKind(message.StatementPlaintexts, batch, p)
		if err != nil {
			continue
		}
		s.Plaintexts[batch][p] = Plaintexts{
			ConfigHash:             cfgHash,
			Batch:                  batch,
			PlaintextsHash:         msg.Statement.Body.ArtifactHash,
			DecryptionFactorHashes: msg.Statement.Body.DecryptionFactorHashes,
			CiphertextsHash:        msg.Statement.Body.SourceHash,
			PkHash:                 s.Ballots[batch].PkHash,
			Position:               p,
		}
	}

	signedPositions, err := st.ListPositions(message.StatementPlaintextsSigned, batch)
	if err != nil {
		return err
	}
	if len(signedPositions) > 0 {
		s.PlaintextsSigned[batch] = map[int]PlaintextsSigned{}
	}
	for _, p := range signedPositions {
		msg, err := st.GetMessageByKind(message.StatementPlaintextsSigned, batch, p)
		if err != nil {
			continue
		}
		s.PlaintextsSigned[batch][p] = PlaintextsSigned{
			ConfigHash:     cfgHash,
			Batch:          batch,
			PlaintextsHash: msg.Statement.Body.ArtifactHash,
			Position:       p,
		}
	}
	return nil
}

func channelHashVector(s *Set, n int) []artifact.Hash {
	v := make([]artifact.Hash, n)
	for p, c := range s.Channel {
		if p < n {
			v[p] = c.ChannelHash
		}
	}
	return v
}

func sharesHashVector(s *Set, n int) []artifact.Hash {
	v := make([]artifact.Hash, n)
	for p, sh := range s.Shares {
		if p < n {
			v[p] = sh.SharesHash
		}
	}
	return v
}

func hashVectorEqual(a, b []artifact.Hash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

