package address

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of a seed exceeds the limit")
	ErrInvalidSeeds          = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump          = errors.New("unable to find a viable bump seed")
)

// CreateProgramAddress derives an address from seeds (bump included) and the program id.
// Derived addresses are never valid ed25519 public keys, so nobody holds a private key for them.
func CreateProgramAddress(seeds [][]byte, programId Identity) (out Identity, err error) {
	if len(seeds) > MaxSeeds {
		err = ErrMaxSeedLengthExceeded
		return
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			err = ErrMaxSeedLengthExceeded
			return
		}
		h.Write(seed)
	}
	h.Write(programId[:])
	h.Write([]byte(pdaMarker))

	copy(out[:], h.Sum(nil))

	if IsOnCurve(out) {
		err = ErrInvalidSeeds
		return
	}
	return
}

// FindProgramAddress searches for the highest bump that yields an off-curve address
func FindProgramAddress(seeds [][]byte, programId Identity) (out Identity, bump uint8, err error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for b := 255; b >= 0; b-- {
		withBump[len(seeds)] = []byte{uint8(b)}
		out, err = CreateProgramAddress(withBump, programId)
		if err == nil {
			bump = uint8(b)
			return
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return
		}
	}

	err = ErrNoViableBump
	return
}

// IsOnCurve checks if the bytes decode to a point on the ed25519 curve
func IsOnCurve(id Identity) bool {
	_, err := new(edwards25519.Point).SetBytes(id[:])
	return err == nil
}
