package datalog

import (
	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/predicate"
)

// agreedHash reduces a set of candidate hashes (e.g. every trustee's
// independently computed PublicKey) to the single value they must all
// agree on. An empty input means the fact does not hold yet; more than one
// distinct non-null hash is a conflicting artifact (spec §4.4).
func agreedHash(role string, batch uint64, hashes []artifact.Hash) (artifact.Hash, bool, error) {
	var found artifact.Hash
	have := false
	for _, h := range hashes {
		if h.IsNull() {
			continue
		}
		if !have {
			found, have = h, true
			continue
		}
		if h != found {
			return artifact.Hash{}, false, conflictError(role, batch, found, h)
		}
	}
	return found, have, nil
}

func publicKeyHashes(set *predicate.Set) []artifact.Hash {
	hs := make([]artifact.Hash, 0, len(set.PublicKey))
	for _, pk := range set.PublicKey {
		hs = append(hs, pk.PkHash)
	}
	return hs
}

func plaintextsHashes(m map[int]predicate.Plaintexts) []artifact.Hash {
	hs := make([]artifact.Hash, 0, len(m))
	for _, pl := range m {
		hs = append(hs, pl.PlaintextsHash)
	}
	return hs
}

func keysOfChannelsSigned(set *predicate.Set) []int {
	ks := make([]int, 0, len(set.ChannelsSigned))
	for k := range set.ChannelsSigned {
		ks = append(ks, k)
	}
	return ks
}

func keysOfPublicKeySigned(set *predicate.Set) []int {
	ks := make([]int, 0, len(set.PublicKeySigned))
	for k := range set.PublicKeySigned {
		ks = append(ks, k)
	}
	return ks
}

// countTrustees returns how many of positions fall within a valid trustee
// cohort [0,n), ignoring the reserved verifier/manager sentinels.
func countTrustees(positions []int, n int) int {
	count := 0
	for _, p := range positions {
		if p >= 0 && p < n {
			count++
		}
	}
	return count
}

// allIn reports whether every position in chain has signed (spec §4.4's
// "signed by all N trustees"/"signed by all selected trustees").
func allIn(chain []int, signers map[int]predicate.MixSigned) bool {
	for _, p := range chain {
		if _, ok := signers[p]; !ok {
			return false
		}
	}
	return true
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func countIn(m map[int]predicate.DecryptionFactors, selected []int) int {
	count := 0
	for _, p := range selected {
		if _, ok := m[p]; ok {
			count++
		}
	}
	return count
}
