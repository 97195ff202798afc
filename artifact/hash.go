package artifact

import "fmt"

// ArtifactHash canonically encodes a and returns its bytes and artifact
// hash (spec SS4.1).
func ArtifactHash(a Artifact) ([]byte, Hash, error) {
	return EncodeAndHash(a)
}

// DecodeByKind decodes canonical bytes into the concrete artifact type
// matching kind. Used by the Message Store when deserialising a message's
// artifact bytes (spec SS4.2).
func DecodeByKind(kind Kind, data []byte) (Artifact, error) {
	switch kind {
	case KindConfiguration:
		var v Configuration
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindChannel:
		var v Channel
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindShares:
		var v Shares
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindDkgPublicKey:
		var v DkgPublicKey
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindBallots:
		var v Ballots
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindMix:
		var v Mix
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindDecryptionFactors:
		var v DecryptionFactors
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindPlaintexts:
		var v Plaintexts
		if err := Decode(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("artifact: unknown kind %d", kind)
	}
}
