package request

import "github.com/veesr/escrow/src/utils/address"

type Refund struct {
	// Receipt derived from the campaign and the signer when empty
	Receipt *address.Identity `json:"receipt,omitempty"`
}

func (self *Refund) ReceiptAddress() address.Identity {
	if self.Receipt == nil {
		return address.Zero
	}
	return *self.Receipt
}
