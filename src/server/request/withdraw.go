package request

import "github.com/veesr/escrow/src/utils/address"

type Withdraw struct {
	Executor       address.Identity `json:"executor"`
	PlatformWallet address.Identity `json:"platform_wallet"`
}
