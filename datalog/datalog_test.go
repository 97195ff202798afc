package datalog

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/predicate"
)

func hashOf(b byte) artifact.Hash {
	var h artifact.Hash
	h[0] = b
	return h
}

func baseSet(n, self int) *predicate.Set {
	trustees := make([]common.Address, n)
	return &predicate.Set{
		Configuration:       predicate.Configuration{Hash: hashOf(0x01), Cfg: artifact.Configuration{Trustees: trustees}, Position: self},
		ConfigurationSigned: map[int]predicate.ConfigurationSigned{},
		Channel:             map[int]predicate.Channel{},
		ChannelsSigned:      map[int]predicate.ChannelsSigned{},
		Shares:              map[int]predicate.Shares{},
		PublicKey:           map[int]predicate.PublicKey{},
		PublicKeySigned:     map[int]predicate.PublicKeySigned{},
		Ballots:             map[uint64]predicate.Ballots{},
		Mix:                 map[uint64]map[int]map[int]predicate.Mix{},
		MixSigned:           map[uint64]map[int]map[int]predicate.MixSigned{},
		DecryptionFactors:   map[uint64]map[int]predicate.DecryptionFactors{},
		Plaintexts:          map[uint64]map[int]predicate.Plaintexts{},
		PlaintextsSigned:    map[uint64]map[int]predicate.PlaintextsSigned{},
	}
}

// TestDispatchRequestsSignConfigurationFirst checks a trustee that has not
// yet signed the Configuration is asked to, before anything else becomes
// derivable (spec §4.4 Bootstrap phase gates everything downstream).
func TestDispatchRequestsSignConfigurationFirst(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, 0)

	reqs, err := Dispatch(set)
	c.Assert(err, qt.IsNil)
	c.Assert(reqs, qt.HasLen, 1)
	c.Assert(reqs[0].Kind, qt.Equals, SignConfiguration)
}

// TestDispatchRequestsGenChannelOnceConfigurationSignedByAll checks the DKG
// phase only opens up once every trustee has signed the Configuration.
func TestDispatchRequestsGenChannelOnceConfigurationSignedByAll(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, 0)
	set.ConfigurationSigned[0] = predicate.ConfigurationSigned{Position: 0}
	set.ConfigurationSigned[1] = predicate.ConfigurationSigned{Position: 1}

	reqs, err := Dispatch(set)
	c.Assert(err, qt.IsNil)
	c.Assert(reqs, qt.HasLen, 1)
	c.Assert(reqs[0].Kind, qt.Equals, GenChannel)
}

// TestDispatchVerifierNeverRequestsComputeActions checks the verifier
// position (no key share) is never asked to generate a channel or compute
// shares, only to sign attestations (spec §4.4).
func TestDispatchVerifierNeverRequestsComputeActions(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, artifact.VerifierPosition)
	set.ConfigurationSigned[0] = predicate.ConfigurationSigned{Position: 0}
	set.ConfigurationSigned[1] = predicate.ConfigurationSigned{Position: 1}

	reqs, err := Dispatch(set)
	c.Assert(err, qt.IsNil)
	for _, r := range reqs {
		c.Assert(r.Kind, qt.Not(qt.Equals), GenChannel)
		c.Assert(r.Kind, qt.Not(qt.Equals), ComputeShares)
		c.Assert(r.Kind, qt.Not(qt.Equals), ComputePk)
	}
}

// TestDispatchDetectsConflictingPublicKey checks that two trustees
// independently computing different PublicKey hashes surfaces as a
// conflicting artifact rather than silently picking one (spec §4.4).
func TestDispatchDetectsConflictingPublicKey(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, 0)
	set.ConfigurationSigned[0] = predicate.ConfigurationSigned{Position: 0}
	set.ConfigurationSigned[1] = predicate.ConfigurationSigned{Position: 1}
	set.Channel[0] = predicate.Channel{Position: 0}
	set.Channel[1] = predicate.Channel{Position: 1}
	set.ChannelsSigned[0] = predicate.ChannelsSigned{Position: 0}
	set.ChannelsSigned[1] = predicate.ChannelsSigned{Position: 1}
	set.Shares[0] = predicate.Shares{Position: 0}
	set.Shares[1] = predicate.Shares{Position: 1}
	set.PublicKey[0] = predicate.PublicKey{Position: 0, PkHash: hashOf(0xAA)}
	set.PublicKey[1] = predicate.PublicKey{Position: 1, PkHash: hashOf(0xBB)}

	_, err := Dispatch(set)
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.Is(err, ErrConflictingArtifact), qt.IsTrue)
}

// TestAgreedHashConflict checks the agreedHash reduction directly: a mix of
// one null hash (not yet produced) and two distinct non-null hashes is a
// conflict, while a mix of a null hash and repeated agreement is not.
func TestAgreedHashConflict(t *testing.T) {
	c := qt.New(t)

	_, _, err := agreedHash("thing", 0, []artifact.Hash{hashOf(0x01), hashOf(0x02)})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.Is(err, ErrConflictingArtifact), qt.IsTrue)

	h, have, err := agreedHash("thing", 0, []artifact.Hash{{}, hashOf(0x01), hashOf(0x01)})
	c.Assert(err, qt.IsNil)
	c.Assert(have, qt.IsTrue)
	c.Assert(h, qt.Equals, hashOf(0x01))

	_, have, err = agreedHash("thing", 0, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(have, qt.IsFalse)
}

// TestShufflePhaseDetectsConflictingMixSource checks a Mix artifact that
// claims a SourceHash different from the expected predecessor is surfaced
// as a conflicting artifact, not silently trusted (spec §4.4 Shuffle
// phase).
func TestShufflePhaseDetectsConflictingMixSource(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, 0)
	batch := uint64(7)
	ballots := predicate.Ballots{BallotsHash: hashOf(0x01), TrusteeSet: []int{0}}
	set.Mix[batch] = map[int]map[int]predicate.Mix{
		1: {0: predicate.Mix{SourceHash: hashOf(0x02), OutputHash: hashOf(0x03), Sequence: 1, Position: 0}},
	}

	reqs, complete, finalHash, err := shufflePhase(set, batch, ballots, 0)
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.Is(err, ErrConflictingArtifact), qt.IsTrue)
	c.Assert(complete, qt.IsFalse)
	c.Assert(finalHash, qt.Equals, artifact.Hash{})
	c.Assert(reqs, qt.IsNil)
}

// TestShufflePhaseRequestsMixFromSelectedMixer checks the mixer at sequence
// k is asked to compute the mix once its predecessor's output is the
// expected source, and that the chain halts (not errors) while waiting on
// an unproduced link.
func TestShufflePhaseRequestsMixFromSelectedMixer(t *testing.T) {
	c := qt.New(t)
	set := baseSet(2, 0)
	batch := uint64(3)
	ballots := predicate.Ballots{BallotsHash: hashOf(0x01), TrusteeSet: []int{0, 1}}

	reqs, complete, _, err := shufflePhase(set, batch, ballots, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(complete, qt.IsFalse)
	c.Assert(reqs, qt.HasLen, 1)
	c.Assert(reqs[0].Kind, qt.Equals, ComputeMix)
	c.Assert(reqs[0].SourceHash, qt.Equals, ballots.BallotsHash)
}
