package escrow

import (
	"fmt"
	"math/bits"

	"github.com/veesr/escrow/src/utils/address"
)

// 10000 basis points is 100%
const BpsDivisor = 10000

// FeeConfig is fixed for the process lifetime
type FeeConfig struct {
	FeeBps         uint64
	PlatformWallet address.Identity
}

func NewFeeConfig(feeBps uint64, platformWallet address.Identity) (out FeeConfig, err error) {
	if feeBps > BpsDivisor {
		err = fmt.Errorf("%w: fee %d bps", ErrInvalidFeeConfig, feeBps)
		return
	}
	if platformWallet.IsZero() {
		err = fmt.Errorf("%w: zero platform wallet", ErrInvalidFeeConfig)
		return
	}
	return FeeConfig{FeeBps: feeBps, PlatformWallet: platformWallet}, nil
}

// Split divides total into the platform fee and the executor's share.
// fee = floor(total * bps / 10000), the rounding remainder stays with the executor.
func (self FeeConfig) Split(total uint64) (fee, toExecutor uint64, err error) {
	hi, lo := bits.Mul64(total, self.FeeBps)
	if hi >= BpsDivisor {
		// Quotient doesn't fit 64 bits, only possible with bps > 10000
		err = ErrArithmeticOverflow
		return
	}
	fee, _ = bits.Div64(hi, lo, BpsDivisor)

	toExecutor, err = checkedSub(total, fee)
	return
}
