package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/logger"
	"github.com/veesr/escrow/src/utils/model"

	"github.com/gammazero/workerpool"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Memory keeps accounts in process memory.
// Transactions run one by one on a single worker, changes are staged and applied only on success.
type Memory struct {
	log     *logrus.Entry
	rent    Rent
	state   *memoryState
	workers *workerpool.WorkerPool

	mtx    sync.RWMutex
	closed bool
}

type memoryState struct {
	campaigns map[address.Identity]*model.Campaign
	receipts  map[address.Identity]*model.DonationReceipt
	balances  map[address.Identity]uint64
}

func NewMemory(config *config.Config) (self *Memory) {
	self = new(Memory)
	self.log = logger.NewSublogger("ledger-memory")
	self.rent = NewRent(&config.Ledger)
	self.state = &memoryState{
		campaigns: make(map[address.Identity]*model.Campaign),
		receipts:  make(map[address.Identity]*model.DonationReceipt),
		balances:  make(map[address.Identity]uint64),
	}

	// One worker serializes all transactions
	self.workers = workerpool.New(1)
	return
}

func (self *Memory) Execute(ctx context.Context, fn func(tx Tx) error) error {
	return self.run(ctx, fn, true)
}

func (self *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	return self.run(ctx, fn, false)
}

// Close waits for pending transactions, later ones fail with ErrLedgerClosed
func (self *Memory) Close() {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.closed {
		return
	}
	self.closed = true
	self.workers.StopWait()
}

func (self *Memory) run(ctx context.Context, fn func(tx Tx) error, commit bool) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	// Submitting to a stopped pool panics
	self.mtx.RLock()
	if self.closed {
		self.mtx.RUnlock()
		return ErrLedgerClosed
	}

	done := make(chan error, 1)
	self.workers.Submit(func() {
		// Once started a transaction always finishes, cancellation is checked only before
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}

		id := xid.New().String()
		staged := newMemoryStore(self.state)

		err := func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: %v", ErrPanic, p)
					self.log.WithError(err).WithField("tx", id).Error("Panic in transaction, rolling back")
				}
			}()
			return fn(&txn{store: staged, rent: self.rent})
		}()
		if err != nil {
			self.log.WithError(err).WithField("tx", id).Debug("Transaction rolled back")
			done <- err
			return
		}

		if commit {
			staged.commit()
			self.log.WithField("tx", id).Trace("Transaction committed")
		}
		done <- nil
	})
	self.mtx.RUnlock()

	return <-done
}

// Overlay on top of the committed state.
// A nil map value marks a deleted account.
type memoryStore struct {
	base *memoryState

	campaigns map[address.Identity]*model.Campaign
	receipts  map[address.Identity]*model.DonationReceipt
	balances  map[address.Identity]uint64
}

func newMemoryStore(base *memoryState) *memoryStore {
	return &memoryStore{
		base:      base,
		campaigns: make(map[address.Identity]*model.Campaign),
		receipts:  make(map[address.Identity]*model.DonationReceipt),
		balances:  make(map[address.Identity]uint64),
	}
}

func (self *memoryStore) commit() {
	for addr, c := range self.campaigns {
		if c == nil {
			delete(self.base.campaigns, addr)
		} else {
			self.base.campaigns[addr] = c
		}
	}
	for addr, r := range self.receipts {
		if r == nil {
			delete(self.base.receipts, addr)
		} else {
			self.base.receipts[addr] = r
		}
	}
	for addr, lamports := range self.balances {
		if lamports == 0 {
			delete(self.base.balances, addr)
		} else {
			self.base.balances[addr] = lamports
		}
	}
}

func (self *memoryStore) getCampaign(addr address.Identity) (*model.Campaign, error) {
	c, staged := self.campaigns[addr]
	if !staged {
		c = self.base.campaigns[addr]
	}
	if c == nil {
		return nil, fmt.Errorf("%w: campaign %s", ErrAccountNotFound, addr)
	}
	return c.Clone(), nil
}

func (self *memoryStore) putCampaign(campaign *model.Campaign, isNew bool) error {
	self.campaigns[campaign.Address] = campaign.Clone()
	return nil
}

func (self *memoryStore) deleteCampaign(addr address.Identity) error {
	self.campaigns[addr] = nil
	return nil
}

func (self *memoryStore) getReceipt(addr address.Identity) (*model.DonationReceipt, error) {
	r, staged := self.receipts[addr]
	if !staged {
		r = self.base.receipts[addr]
	}
	if r == nil {
		return nil, fmt.Errorf("%w: receipt %s", ErrAccountNotFound, addr)
	}
	return r.Clone(), nil
}

func (self *memoryStore) putReceipt(receipt *model.DonationReceipt, isNew bool) error {
	self.receipts[receipt.Address] = receipt.Clone()
	return nil
}

func (self *memoryStore) deleteReceipt(addr address.Identity) error {
	self.receipts[addr] = nil
	return nil
}

func (self *memoryStore) getBalance(addr address.Identity) (uint64, error) {
	lamports, staged := self.balances[addr]
	if !staged {
		lamports = self.base.balances[addr]
	}
	return lamports, nil
}

func (self *memoryStore) putBalance(addr address.Identity, lamports uint64) error {
	self.balances[addr] = lamports
	return nil
}
