package ledger

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/model"
)

// Persistence used by txn. Getters return ErrAccountNotFound for missing accounts.
type store interface {
	getCampaign(addr address.Identity) (*model.Campaign, error)
	putCampaign(campaign *model.Campaign, isNew bool) error
	deleteCampaign(addr address.Identity) error

	getReceipt(addr address.Identity) (*model.DonationReceipt, error)
	putReceipt(receipt *model.DonationReceipt, isNew bool) error
	deleteReceipt(addr address.Identity) error

	// Missing balance is 0
	getBalance(addr address.Identity) (uint64, error)
	putBalance(addr address.Identity, lamports uint64) error
}

// Account rules shared by all backends
type txn struct {
	store store
	rent  Rent
}

func (self *txn) Rent() Rent {
	return self.rent
}

func (self *txn) inUse(addr address.Identity) (bool, error) {
	_, err := self.store.getCampaign(addr)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return false, err
	}

	_, err = self.store.getReceipt(addr)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return false, err
	}
	return false, nil
}

func (self *txn) init(payer, addr address.Identity, space uint64) (err error) {
	if addr.IsZero() {
		return fmt.Errorf("%w: zero address", address.ErrInvalidIdentity)
	}

	used, err := self.inUse(addr)
	if err != nil {
		return
	}
	if used {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, addr)
	}

	return self.Transfer(payer, addr, self.rent.MinimumBalance(space))
}

func (self *txn) close(addr, recipient address.Identity) (err error) {
	lamports, err := self.store.getBalance(addr)
	if err != nil {
		return
	}
	return self.Transfer(addr, recipient, lamports)
}

func (self *txn) Campaign(addr address.Identity) (*model.Campaign, error) {
	return self.store.getCampaign(addr)
}

func (self *txn) InitCampaign(payer address.Identity, campaign *model.Campaign) (err error) {
	err = self.init(payer, campaign.Address, model.CampaignSpace)
	if err != nil {
		return
	}
	return self.store.putCampaign(campaign, true)
}

func (self *txn) SaveCampaign(campaign *model.Campaign) (err error) {
	_, err = self.store.getCampaign(campaign.Address)
	if err != nil {
		return
	}
	return self.store.putCampaign(campaign, false)
}

func (self *txn) CloseCampaign(addr, recipient address.Identity) (err error) {
	_, err = self.store.getCampaign(addr)
	if err != nil {
		return
	}

	err = self.close(addr, recipient)
	if err != nil {
		return
	}
	return self.store.deleteCampaign(addr)
}

func (self *txn) Receipt(addr address.Identity) (*model.DonationReceipt, error) {
	return self.store.getReceipt(addr)
}

func (self *txn) InitReceipt(payer address.Identity, receipt *model.DonationReceipt) (err error) {
	err = self.init(payer, receipt.Address, model.DonationReceiptSpace)
	if err != nil {
		return
	}
	return self.store.putReceipt(receipt, true)
}

func (self *txn) CloseReceipt(addr, recipient address.Identity) (err error) {
	_, err = self.store.getReceipt(addr)
	if err != nil {
		return
	}

	err = self.close(addr, recipient)
	if err != nil {
		return
	}
	return self.store.deleteReceipt(addr)
}

func (self *txn) Transfer(from, to address.Identity, lamports uint64) (err error) {
	if lamports == 0 {
		return nil
	}

	fromBalance, err := self.store.getBalance(from)
	if err != nil {
		return
	}
	if fromBalance < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, fromBalance, lamports)
	}
	if from == to {
		return nil
	}

	toBalance, err := self.store.getBalance(to)
	if err != nil {
		return
	}
	sum, carry := bits.Add64(toBalance, lamports, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}

	err = self.store.putBalance(from, fromBalance-lamports)
	if err != nil {
		return
	}
	return self.store.putBalance(to, sum)
}

func (self *txn) Balance(addr address.Identity) (uint64, error) {
	return self.store.getBalance(addr)
}

func (self *txn) Airdrop(to address.Identity, lamports uint64) (err error) {
	balance, err := self.store.getBalance(to)
	if err != nil {
		return
	}
	sum, carry := bits.Add64(balance, lamports, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}
	return self.store.putBalance(to, sum)
}
