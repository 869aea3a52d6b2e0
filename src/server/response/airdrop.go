package response

import "github.com/veesr/escrow/src/utils/address"

type Airdrop struct {
	To       address.Identity `json:"to"`
	Lamports uint64           `json:"lamports"`
}
