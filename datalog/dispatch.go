package datalog

import (
	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/predicate"
)

// Dispatch evaluates the fixed rule set of spec §4.4 against set and returns
// every action that is currently derivable for set.Configuration.Position —
// a trustee position in [0,N), or artifact.VerifierPosition. Order is
// unspecified; spec §5 states actions within a step() commute.
func Dispatch(set *predicate.Set) ([]Request, error) {
	cfg := set.Configuration
	n := cfg.Cfg.N()
	self := cfg.Position
	isTrustee := self >= 0 && self < n

	var reqs []Request

	configurationSignedAll := len(set.ConfigurationSigned) >= n
	if isTrustee {
		if _, signed := set.ConfigurationSigned[self]; !signed {
			reqs = append(reqs, Request{Kind: SignConfiguration, ConfigHash: cfg.Hash, TargetHash: cfg.Hash})
		}
	}
	if !configurationSignedAll {
		return reqs, nil
	}

	dkgReqs, publicKeySignedAll, pkHash, err := dkgPhase(set, n, self, isTrustee)
	if err != nil {
		return nil, err
	}
	reqs = append(reqs, dkgReqs...)
	if !publicKeySignedAll {
		return reqs, nil
	}

	for batch, ballots := range set.Ballots {
		shuffleReqs, mixComplete, finalHash, err := shufflePhase(set, batch, ballots, self)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, shuffleReqs...)
		if !mixComplete {
			continue
		}
		decryptReqs, err := decryptPhase(set, batch, ballots, finalHash, self, isTrustee, pkHash)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, decryptReqs...)
	}

	return reqs, nil
}

// dkgPhase implements spec §4.4's DKG phase. It returns the requests
// derivable right now, whether PublicKeySignedAll holds, and the agreed
// PublicKey hash (valid only once PublicKeySignedAll is true).
func dkgPhase(set *predicate.Set, n, self int, isTrustee bool) ([]Request, bool, artifact.Hash, error) {
	var reqs []Request
	cfgHash := set.Configuration.Hash

	if isTrustee {
		if _, ok := set.Channel[self]; !ok {
			reqs = append(reqs, Request{Kind: GenChannel, ConfigHash: cfgHash})
		}
	}

	allChannels := len(set.Channel) >= n
	if allChannels {
		if _, signed := set.ChannelsSigned[self]; !signed {
			reqs = append(reqs, Request{Kind: SignChannels, ConfigHash: cfgHash})
		}
	}

	channelsSignedByAllTrustees := countTrustees(keysOfChannelsSigned(set), n) >= n
	if channelsSignedByAllTrustees && isTrustee {
		if _, ok := set.Shares[self]; !ok {
			reqs = append(reqs, Request{Kind: ComputeShares, ConfigHash: cfgHash})
		}
	}

	allShares := len(set.Shares) >= n
	if allShares && isTrustee {
		if _, ok := set.PublicKey[self]; !ok {
			reqs = append(reqs, Request{Kind: ComputePk, ConfigHash: cfgHash})
		}
	}

	pkHash, havePk, err := agreedHash("PublicKey", 0, publicKeyHashes(set))
	if err != nil {
		return nil, false, artifact.Hash{}, err
	}
	if havePk {
		if _, signed := set.PublicKeySigned[self]; !signed {
			reqs = append(reqs, Request{Kind: SignPk, ConfigHash: cfgHash, TargetHash: pkHash})
		}
	}

	publicKeySignedAll := countTrustees(keysOfPublicKeySigned(set), n) >= n && havePk
	return reqs, publicKeySignedAll, pkHash, nil
}

// shufflePhase walks the mix chain for one Ballots batch (spec §4.4
// "Shuffle phase"). It returns the requests derivable now, whether
// MixComplete holds, and the final mix output hash.
func shufflePhase(set *predicate.Set, batch uint64, ballots predicate.Ballots, self int) ([]Request, bool, artifact.Hash, error) {
	var reqs []Request
	cfgHash := set.Configuration.Hash
	chain := ballots.TrusteeSet

	source := ballots.BallotsHash
	for k := 1; k <= len(chain); k++ {
		mixerPos := chain[k-1]

		mixAtK, haveMix := set.Mix[batch][k][mixerPos]
		if self == mixerPos && !haveMix {
			reqs = append(reqs, Request{Kind: ComputeMix, ConfigHash: cfgHash, Batch: batch, Sequence: k, SourceHash: source})
		}
		if !haveMix {
			// The rest of the chain cannot be evaluated without this
			// link's output.
			return reqs, false, artifact.Hash{}, nil
		}
		if mixAtK.SourceHash != source {
			return nil, false, artifact.Hash{}, conflictError("Mix source", batch, mixAtK.SourceHash, source)
		}

		if _, signed := set.MixSigned[batch][k][self]; !signed {
			reqs = append(reqs, Request{
				Kind: SignMix, ConfigHash: cfgHash, Batch: batch, Sequence: k,
				SourceHash: mixAtK.SourceHash, TargetHash: mixAtK.OutputHash,
			})
		}

		if !allIn(chain, set.MixSigned[batch][k]) {
			return reqs, false, artifact.Hash{}, nil
		}
		source = mixAtK.OutputHash
	}
	return reqs, true, source, nil
}

// decryptPhase implements spec §4.4's Decrypt phase, gated on MixComplete.
func decryptPhase(set *predicate.Set, batch uint64, ballots predicate.Ballots, finalHash artifact.Hash, self int, isTrustee bool, pkHash artifact.Hash) ([]Request, error) {
	var reqs []Request
	cfgHash := set.Configuration.Hash
	selected := ballots.TrusteeSet

	if isTrustee && contains(selected, self) {
		if _, ok := set.DecryptionFactors[batch][self]; !ok {
			reqs = append(reqs, Request{Kind: ComputeDecryptionFactors, ConfigHash: cfgHash, Batch: batch, SourceHash: finalHash})
		}
	}

	tThreshold := len(selected)
	haveAllFactors := countIn(set.DecryptionFactors[batch], selected) >= tThreshold
	firstSelected := -1
	if len(selected) > 0 {
		firstSelected = selected[0]
	}

	if haveAllFactors && isTrustee && self == firstSelected {
		if _, ok := set.Plaintexts[batch][self]; !ok {
			reqs = append(reqs, Request{Kind: ComputePlaintexts, ConfigHash: cfgHash, Batch: batch, SourceHash: finalHash, TargetHash: pkHash})
		}
	}

	plHash, havePlaintexts, err := agreedHash("Plaintexts", batch, plaintextsHashes(set.Plaintexts[batch]))
	if err != nil {
		return nil, err
	}
	if havePlaintexts {
		if _, signed := set.PlaintextsSigned[batch][self]; !signed {
			reqs = append(reqs, Request{Kind: SignPlaintexts, ConfigHash: cfgHash, Batch: batch, TargetHash: plHash})
		}
	}

	return reqs, nil
}
