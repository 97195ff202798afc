// Package shuffle implements the Mix artifact's verifiable shuffle: a proof
// that an output ciphertext vector is a re-encryption of a permutation of an
// input vector, without revealing the permutation itself (spec SS1, SS3,
// SS4.5).
//
// No file in the retrieved pack implements a shuffle proof (see DESIGN.md).
// The construction below follows the NIZK idiom of crypto/elgamal/proof.go
// (Chaum-Pedersen equality of discrete logs, Fiat-Shamir via
// poseidon.MultiPoseidon) but, unlike a bare per-position Chaum-Pedersen
// proof, never writes the permutation into the proof: an earlier version of
// this package carried Proof.Permutation in the clear, which let any board
// reader compose per-stage permutations across the whole mix chain and trace
// a ballot's original ciphertext to its final decrypted plaintext. That is
// the one property a verifiable shuffle exists to prevent, so this package
// instead commits to the permutation and proves consistency without opening
// it:
//
//  1. Pedersen-commit to the source input index of every output position,
//     using the DKG public key as the commitment's second generator (no
//     party knows its discrete log under the threshold assumption, and no
//     hash-to-curve primitive exists on ecc.Point to derive an independent
//     one, so the public key doubles as one).
//  2. Prove, with a chain of Cramer-Damgard Pedersen multiplication proofs,
//     that the committed indices multiply out (after a Fiat-Shamir shift)
//     to the same public target a genuine permutation of [0,n) would -
//     sound by Schwartz-Zippel, and never opens an individual index.
//  3. Prove, for every output position, a Chaum-Pedersen-Schoenmakers 1-of-n
//     OR composition that the position's committed index both opens to some
//     candidate m and is the source of that output's re-encryption - this
//     binds the bijectivity argument in (2) to the actual ciphertexts
//     instead of leaving them as two independent, unlinked claims.
//
// The OR composition costs one proof per (output position, candidate
// index) pair, O(n^2) total; acceptable for the ballot batch sizes this
// protocol targets.
package shuffle

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/elgamal"
	"github.com/braidcore/braid/crypto/hash/poseidon"
	"github.com/fxamacker/cbor/v2"
)

// mulProof is a Cramer-Damgard proof that Pedersen commitments A=Com(a,ra),
// B=Com(b,rb), C=Com(c,rc) satisfy c=a*b mod order, without revealing
// a, b, c, ra, rb or rc.
type mulProof struct {
	T1, T2 ecc.Point
	Z1, Z2, Z3 *big.Int
}

// orBranch is one candidate branch of a position's 1-of-n correspondence
// proof: it jointly asserts that the position's index commitment opens to
// candidate m and that the output ciphertext re-encrypts input[m], using a
// shared challenge share E (real for the true branch, simulated for every
// other).
type orBranch struct {
	Aa, Ab1, Ab2 ecc.Point
	E, Zt, Zk    *big.Int
}

// orProof is the full 1-of-n correspondence proof for one output position:
// exactly one branch is genuine, the rest are simulated, and the branches'
// challenge shares sum to the position's Fiat-Shamir challenge.
type orProof struct {
	Branches []orBranch
}

// Proof is a non-interactive proof that Output is a re-encryption, under
// some hidden permutation, of Input.
type Proof struct {
	// IndexCommitments[i] hides the input position output[i] re-encrypts.
	IndexCommitments []ecc.Point
	// ProductCommitments[i] (i=0..n-2) commits to the running product of
	// the first i+2 shifted committed indices; ProductCommitments[n-2]
	// commits to the full product, opened by FinalBlinding.
	ProductCommitments []ecc.Point
	// MulProofs[i] proves ProductCommitments[i] is consistent with
	// ProductCommitments[i-1] (or IndexCommitments[0]'s shift, for i=0)
	// and IndexCommitments[i+1]'s shift.
	MulProofs []mulProof
	// FinalBlinding opens the last product commitment to the public
	// target product - safe, since that product is public regardless of
	// the proof.
	FinalBlinding *big.Int
	// PermutationChallenge is the Fiat-Shamir scalar x binding every
	// index commitment to the permutation identity check.
	PermutationChallenge *big.Int
	// Correspondence[i] is output position i's 1-of-n proof that
	// IndexCommitments[i] opens to the position it was actually
	// re-encrypted from.
	Correspondence []orProof
}

// wire shapes mirror elgamal.Ciphertext's convention: every ecc.Point field
// is reduced to raw bytes for CBOR and reconstructed against the curve named
// once at the top of the envelope.

type wireMulProof struct {
	T1, T2         []byte
	Z1, Z2, Z3     *big.Int
}

type wireOrBranch struct {
	Aa, Ab1, Ab2 []byte
	E, Zt, Zk    *big.Int
}

type wireOrProof struct {
	Branches []wireOrBranch
}

type wireProof struct {
	Curve                string
	IndexCommitments     [][]byte
	ProductCommitments   [][]byte
	MulProofs            []wireMulProof
	FinalBlinding        *big.Int
	PermutationChallenge *big.Int
	Correspondence       []wireOrProof
}

// MarshalCBOR implements cbor.Marshaler.
func (p Proof) MarshalCBOR() ([]byte, error) {
	if len(p.IndexCommitments) == 0 {
		return nil, fmt.Errorf("shuffle: cannot marshal empty proof")
	}
	w := wireProof{
		Curve:                p.IndexCommitments[0].Type(),
		FinalBlinding:        p.FinalBlinding,
		PermutationChallenge: p.PermutationChallenge,
	}
	for _, c := range p.IndexCommitments {
		w.IndexCommitments = append(w.IndexCommitments, c.Marshal())
	}
	for _, c := range p.ProductCommitments {
		w.ProductCommitments = append(w.ProductCommitments, c.Marshal())
	}
	for _, mp := range p.MulProofs {
		w.MulProofs = append(w.MulProofs, wireMulProof{
			T1: mp.T1.Marshal(), T2: mp.T2.Marshal(),
			Z1: mp.Z1, Z2: mp.Z2, Z3: mp.Z3,
		})
	}
	for _, op := range p.Correspondence {
		wop := wireOrProof{}
		for _, b := range op.Branches {
			wop.Branches = append(wop.Branches, wireOrBranch{
				Aa: b.Aa.Marshal(), Ab1: b.Ab1.Marshal(), Ab2: b.Ab2.Marshal(),
				E: b.E, Zt: b.Zt, Zk: b.Zk,
			})
		}
		w.Correspondence = append(w.Correspondence, wop)
	}
	return cbor.Marshal(w)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("shuffle: unmarshal envelope: %w", err)
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("shuffle: unsupported curve %q", w.Curve)
	}

	unmarshalPoint := func(b []byte) (ecc.Point, error) {
		pt := curves.New(w.Curve)
		if err := pt.Unmarshal(b); err != nil {
			return nil, err
		}
		return pt, nil
	}

	idx := make([]ecc.Point, len(w.IndexCommitments))
	for i, b := range w.IndexCommitments {
		pt, err := unmarshalPoint(b)
		if err != nil {
			return fmt.Errorf("shuffle: unmarshal index commitment %d: %w", i, err)
		}
		idx[i] = pt
	}
	prod := make([]ecc.Point, len(w.ProductCommitments))
	for i, b := range w.ProductCommitments {
		pt, err := unmarshalPoint(b)
		if err != nil {
			return fmt.Errorf("shuffle: unmarshal product commitment %d: %w", i, err)
		}
		prod[i] = pt
	}
	muls := make([]mulProof, len(w.MulProofs))
	for i, wmp := range w.MulProofs {
		t1, err := unmarshalPoint(wmp.T1)
		if err != nil {
			return fmt.Errorf("shuffle: unmarshal mul proof %d t1: %w", i, err)
		}
		t2, err := unmarshalPoint(wmp.T2)
		if err != nil {
			return fmt.Errorf("shuffle: unmarshal mul proof %d t2: %w", i, err)
		}
		muls[i] = mulProof{T1: t1, T2: t2, Z1: wmp.Z1, Z2: wmp.Z2, Z3: wmp.Z3}
	}
	corr := make([]orProof, len(w.Correspondence))
	for i, wop := range w.Correspondence {
		branches := make([]orBranch, len(wop.Branches))
		for j, wb := range wop.Branches {
			aa, err := unmarshalPoint(wb.Aa)
			if err != nil {
				return fmt.Errorf("shuffle: unmarshal or proof %d/%d aa: %w", i, j, err)
			}
			ab1, err := unmarshalPoint(wb.Ab1)
			if err != nil {
				return fmt.Errorf("shuffle: unmarshal or proof %d/%d ab1: %w", i, j, err)
			}
			ab2, err := unmarshalPoint(wb.Ab2)
			if err != nil {
				return fmt.Errorf("shuffle: unmarshal or proof %d/%d ab2: %w", i, j, err)
			}
			branches[j] = orBranch{Aa: aa, Ab1: ab1, Ab2: ab2, E: wb.E, Zt: wb.Zt, Zk: wb.Zk}
		}
		corr[i] = orProof{Branches: branches}
	}

	p.IndexCommitments = idx
	p.ProductCommitments = prod
	p.MulProofs = muls
	p.FinalBlinding = w.FinalBlinding
	p.PermutationChallenge = w.PermutationChallenge
	p.Correspondence = corr
	return nil
}

// point arithmetic helpers: proto supplies the curve (via New()/Order()),
// every op returns a fresh point so callers never alias shared state.

func addPoint(proto, a, b ecc.Point) ecc.Point {
	p := proto.New()
	p.Add(a, b)
	return p
}

func negPoint(proto, a ecc.Point) ecc.Point {
	p := proto.New()
	p.Neg(a)
	return p
}

func subPoint(proto, a, b ecc.Point) ecc.Point {
	return addPoint(proto, a, negPoint(proto, b))
}

func scalarBase(proto ecc.Point, scalar *big.Int) ecc.Point {
	p := proto.New()
	p.ScalarBaseMult(new(big.Int).Mod(scalar, proto.Order()))
	return p
}

func scalarMul(proto, base ecc.Point, scalar *big.Int) ecc.Point {
	p := proto.New()
	p.ScalarMult(base, new(big.Int).Mod(scalar, proto.Order()))
	return p
}

// commit returns a Pedersen commitment value*G + blinding*pk, using pk (the
// DKG public key) as the commitment's second generator.
func commit(pk ecc.Point, value, blinding *big.Int) ecc.Point {
	return addPoint(pk, scalarBase(pk, value), scalarMul(pk, pk, blinding))
}

func randScalar(order *big.Int) (*big.Int, error) {
	v, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, fmt.Errorf("shuffle: sample scalar: %w", err)
	}
	return v, nil
}

func modAdd(order *big.Int, terms ...*big.Int) *big.Int {
	sum := new(big.Int)
	for _, t := range terms {
		sum.Add(sum, t)
	}
	return sum.Mod(sum, order)
}

func modSub(order *big.Int, a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Sub(a, b), order)
}

func modMul(order *big.Int, a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), order)
}

// pointCoords appends x,y for each point in pts to inputs, for Fiat-Shamir
// hashing via poseidon.MultiPoseidon.
func pointCoords(inputs []*big.Int, pts ...ecc.Point) []*big.Int {
	for _, pt := range pts {
		x, y := pt.Point()
		inputs = append(inputs, x, y)
	}
	return inputs
}

func hashToScalar(order *big.Int, inputs []*big.Int) *big.Int {
	digest, err := poseidon.MultiPoseidon(inputs...)
	if err != nil {
		panic(fmt.Sprintf("shuffle: hash challenge: %v", err))
	}
	return new(big.Int).Mod(digest, order)
}

// permutationChallenge derives x, the Fiat-Shamir scalar that shifts every
// committed index before the product argument runs, binding it to the
// public key, the full input/output vectors, the label and every index
// commitment.
func permutationChallenge(pk ecc.Point, input, output []elgamal.Ciphertext, label []byte, commitments []ecc.Point) *big.Int {
	inputs := []*big.Int{new(big.Int).SetBytes([]byte("shuffle-permutation"))}
	inputs = pointCoords(inputs, pk)
	for _, c := range input {
		inputs = pointCoords(inputs, c.C1, c.C2)
	}
	for _, c := range output {
		inputs = pointCoords(inputs, c.C1, c.C2)
	}
	for _, c := range commitments {
		inputs = pointCoords(inputs, c)
	}
	inputs = append(inputs, new(big.Int).SetBytes(label))
	return hashToScalar(pk.Order(), inputs)
}

// proveMul builds a Cramer-Damgard proof that C=Com(c,rc) commits to the
// product of the values committed in A=Com(a,ra) and B=Com(b,rb).
func proveMul(pk ecc.Point, a, ra *big.Int, A ecc.Point, b, rb *big.Int, B ecc.Point, c, rc *big.Int, C ecc.Point) (mulProof, error) {
	order := pk.Order()
	rho1, err := randScalar(order)
	if err != nil {
		return mulProof{}, err
	}
	rho2, err := randScalar(order)
	if err != nil {
		return mulProof{}, err
	}
	rho3, err := randScalar(order)
	if err != nil {
		return mulProof{}, err
	}

	t1 := commit(pk, rho1, rho2)
	t2 := addPoint(pk, scalarMul(pk, B, rho1), scalarMul(pk, pk, rho3))

	e := mulChallenge(pk, A, B, C, t1, t2)

	z1 := modAdd(order, rho1, modMul(order, e, a))
	z2 := modAdd(order, rho2, modMul(order, e, ra))
	z3 := modAdd(order, rho3, modMul(order, e, modSub(order, rc, modMul(order, a, rb))))

	return mulProof{T1: t1, T2: t2, Z1: z1, Z2: z2, Z3: z3}, nil
}

func verifyMul(pk ecc.Point, A, B, C ecc.Point, mp mulProof) error {
	e := mulChallenge(pk, A, B, C, mp.T1, mp.T2)

	lhs1 := commit(pk, mp.Z1, mp.Z2)
	rhs1 := addPoint(pk, mp.T1, scalarMul(pk, A, e))
	if !lhs1.Equal(rhs1) {
		return fmt.Errorf("G relation failed")
	}

	lhs2 := addPoint(pk, scalarMul(pk, B, mp.Z1), scalarMul(pk, pk, mp.Z3))
	rhs2 := addPoint(pk, mp.T2, scalarMul(pk, C, e))
	if !lhs2.Equal(rhs2) {
		return fmt.Errorf("product relation failed")
	}
	return nil
}

func mulChallenge(pk ecc.Point, A, B, C, T1, T2 ecc.Point) *big.Int {
	inputs := []*big.Int{new(big.Int).SetBytes([]byte("shuffle-mul"))}
	inputs = pointCoords(inputs, pk, A, B, C, T1, T2)
	return hashToScalar(pk.Order(), inputs)
}

// proveOr builds output position index's 1-of-n correspondence proof:
// trueM is the candidate the position was actually re-encrypted from; c is
// its index commitment (with blinding cBlind); k is the re-encryption
// exponent used; d1[m]/d2[m] are output[index].C{1,2} - input[m].C{1,2} for
// every candidate m.
func proveOr(pk ecc.Point, label []byte, index, n, trueM int, c ecc.Point, cBlind, k *big.Int, d1, d2 []ecc.Point) (orProof, error) {
	order := pk.Order()
	branches := make([]orBranch, n)
	shareSum := new(big.Int)

	for m := 0; m < n; m++ {
		if m == trueM {
			continue
		}
		em, err := randScalar(order)
		if err != nil {
			return orProof{}, err
		}
		zt, err := randScalar(order)
		if err != nil {
			return orProof{}, err
		}
		zk, err := randScalar(order)
		if err != nil {
			return orProof{}, err
		}

		cShiftM := subPoint(pk, c, scalarBase(pk, big.NewInt(int64(m))))
		aa := subPoint(pk, scalarMul(pk, pk, zt), scalarMul(pk, cShiftM, em))
		ab1 := subPoint(pk, scalarBase(pk, zk), scalarMul(pk, d1[m], em))
		ab2 := subPoint(pk, scalarMul(pk, pk, zk), scalarMul(pk, d2[m], em))

		branches[m] = orBranch{Aa: aa, Ab1: ab1, Ab2: ab2, E: em, Zt: zt, Zk: zk}
		shareSum.Add(shareSum, em)
	}

	rho, err := randScalar(order)
	if err != nil {
		return orProof{}, err
	}
	r, err := randScalar(order)
	if err != nil {
		return orProof{}, err
	}
	aaTrue := scalarMul(pk, pk, rho)
	ab1True := scalarBase(pk, r)
	ab2True := scalarMul(pk, pk, r)
	branches[trueM] = orBranch{Aa: aaTrue, Ab1: ab1True, Ab2: ab2True}

	e := orChallenge(pk, label, index, c, d1, d2, branches)
	shareSum.Mod(shareSum, order)
	eTrue := modSub(order, e, shareSum)

	branches[trueM].E = eTrue
	branches[trueM].Zt = modAdd(order, rho, modMul(order, eTrue, cBlind))
	branches[trueM].Zk = modAdd(order, r, modMul(order, eTrue, k))

	return orProof{Branches: branches}, nil
}

func verifyOr(pk ecc.Point, label []byte, index, n int, c ecc.Point, d1, d2 []ecc.Point, proof orProof) error {
	if len(proof.Branches) != n {
		return fmt.Errorf("shuffle: correspondence proof has %d branches, want %d", len(proof.Branches), n)
	}
	order := pk.Order()
	e := orChallenge(pk, label, index, c, d1, d2, proof.Branches)

	shareSum := new(big.Int)
	for m, b := range proof.Branches {
		shareSum.Add(shareSum, b.E)

		cShiftM := subPoint(pk, c, scalarBase(pk, big.NewInt(int64(m))))
		lhsA := scalarMul(pk, pk, b.Zt)
		rhsA := addPoint(pk, b.Aa, scalarMul(pk, cShiftM, b.E))
		if !lhsA.Equal(rhsA) {
			return fmt.Errorf("index-match relation failed at candidate %d", m)
		}

		lhsB1 := scalarBase(pk, b.Zk)
		rhsB1 := addPoint(pk, b.Ab1, scalarMul(pk, d1[m], b.E))
		if !lhsB1.Equal(rhsB1) {
			return fmt.Errorf("re-encryption relation (G) failed at candidate %d", m)
		}

		lhsB2 := scalarMul(pk, pk, b.Zk)
		rhsB2 := addPoint(pk, b.Ab2, scalarMul(pk, d2[m], b.E))
		if !lhsB2.Equal(rhsB2) {
			return fmt.Errorf("re-encryption relation (PK) failed at candidate %d", m)
		}
	}
	if shareSum.Mod(shareSum, order).Cmp(e) != 0 {
		return fmt.Errorf("challenge shares do not sum to the position challenge")
	}
	return nil
}

func orChallenge(pk ecc.Point, label []byte, index int, c ecc.Point, d1, d2 []ecc.Point, branches []orBranch) *big.Int {
	inputs := []*big.Int{new(big.Int).SetBytes([]byte("shuffle-or")), big.NewInt(int64(index))}
	inputs = pointCoords(inputs, pk, c)
	for m := range branches {
		inputs = pointCoords(inputs, d1[m], d2[m])
	}
	for _, b := range branches {
		inputs = pointCoords(inputs, b.Aa, b.Ab1, b.Ab2)
	}
	inputs = append(inputs, new(big.Int).SetBytes(label))
	return hashToScalar(pk.Order(), inputs)
}

// Shuffle permutes input under a freshly sampled permutation, re-encrypts
// every entry under publicKey, and produces a Proof that output is a valid
// shuffle of input without revealing the permutation. label binds the proof
// to a particular mix position (spec SS4.5: label(batch, "mix"+k)).
func Shuffle(publicKey ecc.Point, input []elgamal.Ciphertext, label []byte) (output []elgamal.Ciphertext, proof Proof, err error) {
	n := len(input)
	if n == 0 {
		return nil, Proof{}, fmt.Errorf("shuffle: empty input")
	}
	order := publicKey.Order()

	perm, err := randomPermutation(n)
	if err != nil {
		return nil, Proof{}, err
	}

	output = make([]elgamal.Ciphertext, n)
	ks := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		k, err := randScalar(order)
		if err != nil {
			return nil, Proof{}, err
		}
		ks[i] = k
		output[i] = elgamal.ReEncrypt(publicKey, input[perm[i]], k)
	}

	rs := make([]*big.Int, n)
	indexCommitments := make([]ecc.Point, n)
	for i := 0; i < n; i++ {
		r, err := randScalar(order)
		if err != nil {
			return nil, Proof{}, err
		}
		rs[i] = r
		indexCommitments[i] = commit(publicKey, big.NewInt(int64(perm[i])), r)
	}

	x := permutationChallenge(publicKey, input, output, label, indexCommitments)

	b := make([]*big.Int, n)
	shifted := make([]ecc.Point, n)
	for i := 0; i < n; i++ {
		b[i] = modSub(order, big.NewInt(int64(perm[i])), x)
		shifted[i] = subPoint(publicKey, indexCommitments[i], scalarBase(publicKey, x))
	}

	productCommitments := make([]ecc.Point, 0, n-1)
	mulProofs := make([]mulProof, 0, n-1)

	p := b[0]
	s := rs[0]
	prevCommitment := shifted[0]
	for i := 1; i < n; i++ {
		pi := modMul(order, p, b[i])
		si, err := randScalar(order)
		if err != nil {
			return nil, Proof{}, err
		}
		cpi := commit(publicKey, pi, si)

		mp, err := proveMul(publicKey, p, s, prevCommitment, b[i], rs[i], shifted[i], pi, si, cpi)
		if err != nil {
			return nil, Proof{}, err
		}

		productCommitments = append(productCommitments, cpi)
		mulProofs = append(mulProofs, mp)
		p, s, prevCommitment = pi, si, cpi
	}

	correspondence := make([]orProof, n)
	for i := 0; i < n; i++ {
		d1 := make([]ecc.Point, n)
		d2 := make([]ecc.Point, n)
		for m := 0; m < n; m++ {
			d1[m] = subPoint(publicKey, output[i].C1, input[m].C1)
			d2[m] = subPoint(publicKey, output[i].C2, input[m].C2)
		}
		op, err := proveOr(publicKey, label, i, n, perm[i], indexCommitments[i], rs[i], ks[i], d1, d2)
		if err != nil {
			return nil, Proof{}, err
		}
		correspondence[i] = op
	}

	return output, Proof{
		IndexCommitments:     indexCommitments,
		ProductCommitments:   productCommitments,
		MulProofs:            mulProofs,
		FinalBlinding:        s,
		PermutationChallenge: x,
		Correspondence:       correspondence,
	}, nil
}

// Verify checks that proof demonstrates output is a valid shuffle of input
// under publicKey, using the same label the prover used, without learning
// the permutation.
func Verify(publicKey ecc.Point, input, output []elgamal.Ciphertext, proof Proof, label []byte) error {
	n := len(input)
	if len(output) != n {
		return fmt.Errorf("shuffle: input/output length mismatch")
	}
	if n == 0 {
		return fmt.Errorf("shuffle: empty input")
	}
	if len(proof.IndexCommitments) != n || len(proof.ProductCommitments) != n-1 ||
		len(proof.MulProofs) != n-1 || len(proof.Correspondence) != n {
		return fmt.Errorf("shuffle: malformed proof length")
	}
	if proof.PermutationChallenge == nil || proof.FinalBlinding == nil {
		return fmt.Errorf("shuffle: malformed proof: missing scalar")
	}
	order := publicKey.Order()

	x := permutationChallenge(publicKey, input, output, label, proof.IndexCommitments)
	if x.Sign() == 0 {
		return fmt.Errorf("shuffle: zero permutation challenge")
	}
	if x.Cmp(proof.PermutationChallenge) != 0 {
		return fmt.Errorf("shuffle: permutation challenge mismatch")
	}

	shifted := make([]ecc.Point, n)
	for i := 0; i < n; i++ {
		shifted[i] = subPoint(publicKey, proof.IndexCommitments[i], scalarBase(publicKey, x))
	}

	prevCommitment := shifted[0]
	for i := 1; i < n; i++ {
		cpi := proof.ProductCommitments[i-1]
		if err := verifyMul(publicKey, prevCommitment, shifted[i], cpi, proof.MulProofs[i-1]); err != nil {
			return fmt.Errorf("shuffle: multiplication proof %d: %w", i, err)
		}
		prevCommitment = cpi
	}

	target := big.NewInt(1)
	for j := 0; j < n; j++ {
		term := modSub(order, big.NewInt(int64(j)), x)
		target = modMul(order, target, term)
	}
	expected := commit(publicKey, target, proof.FinalBlinding)
	if !expected.Equal(prevCommitment) {
		return fmt.Errorf("shuffle: permutation product check failed")
	}

	for i := 0; i < n; i++ {
		d1 := make([]ecc.Point, n)
		d2 := make([]ecc.Point, n)
		for m := 0; m < n; m++ {
			d1[m] = subPoint(publicKey, output[i].C1, input[m].C1)
			d2[m] = subPoint(publicKey, output[i].C2, input[m].C2)
		}
		if err := verifyOr(publicKey, label, i, n, proof.IndexCommitments[i], d1, d2, proof.Correspondence[i]); err != nil {
			return fmt.Errorf("shuffle: correspondence proof at position %d: %w", i, err)
		}
	}

	return nil
}

func randomPermutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("shuffle: sample permutation: %w", err)
		}
		j := int(jBig.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}
