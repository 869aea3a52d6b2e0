package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/logger"
	"github.com/veesr/escrow/src/utils/model"
	"github.com/veesr/escrow/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres runs every transaction with SERIALIZABLE isolation.
// Transactions aborted by concurrent updates are retried, other errors are returned right away.
type Postgres struct {
	log    *logrus.Entry
	config *config.Config
	rent   Rent
	db     *gorm.DB
}

func NewPostgres(config *config.Config) (self *Postgres) {
	self = new(Postgres)
	self.log = logger.NewSublogger("ledger-postgres")
	self.config = config
	self.rent = NewRent(&config.Ledger)
	return
}

func (self *Postgres) WithDB(v *gorm.DB) *Postgres {
	self.db = v
	return self
}

func (self *Postgres) Execute(ctx context.Context, fn func(tx Tx) error) error {
	return self.run(ctx, fn, true)
}

func (self *Postgres) View(ctx context.Context, fn func(tx Tx) error) error {
	return self.run(ctx, fn, false)
}

var errViewRollback = errors.New("view rollback")

func (self *Postgres) run(ctx context.Context, fn func(tx Tx) error, commit bool) error {
	id := xid.New().String()

	return task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.Ledger.MaxElapsedTime).
		WithMaxInterval(self.config.Ledger.MaxInterval).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("tx", id).Warn("Concurrent update, retrying transaction")
		}).
		Run(func() error {
			err := self.db.WithContext(ctx).
				Transaction(func(tx *gorm.DB) error {
					err := fn(&txn{store: &postgresStore{db: tx}, rent: self.rent})
					if err == nil && !commit {
						return errViewRollback
					}
					return err
				}, &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: !commit})
			if errors.Is(err, errViewRollback) {
				return nil
			}
			if err != nil && IsSerializationFailure(err) {
				return err
			}
			if err != nil {
				return backoff.Permanent(err)
			}
			return nil
		})
}

// IsSerializationFailure checks for SQLSTATE 40001 (serialization_failure) and 40P01 (deadlock_detected)
func IsSerializationFailure(err error) bool {
	var pgErr interface{ SQLState() string }
	if !errors.As(err, &pgErr) {
		return false
	}
	code := pgErr.SQLState()
	return code == "40001" || code == "40P01"
}

type postgresStore struct {
	db *gorm.DB
}

func (self *postgresStore) getCampaign(addr address.Identity) (out *model.Campaign, err error) {
	out = new(model.Campaign)
	err = self.db.Where("address = ?", addr).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: campaign %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *postgresStore) putCampaign(campaign *model.Campaign, isNew bool) error {
	if isNew {
		return self.db.Create(campaign).Error
	}
	return self.db.Save(campaign).Error
}

func (self *postgresStore) deleteCampaign(addr address.Identity) error {
	return self.db.Where("address = ?", addr).Delete(&model.Campaign{}).Error
}

func (self *postgresStore) getReceipt(addr address.Identity) (out *model.DonationReceipt, err error) {
	out = new(model.DonationReceipt)
	err = self.db.Where("address = ?", addr).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: receipt %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *postgresStore) putReceipt(receipt *model.DonationReceipt, isNew bool) error {
	if isNew {
		return self.db.Create(receipt).Error
	}
	return self.db.Save(receipt).Error
}

func (self *postgresStore) deleteReceipt(addr address.Identity) error {
	return self.db.Where("address = ?", addr).Delete(&model.DonationReceipt{}).Error
}

func (self *postgresStore) getBalance(addr address.Identity) (uint64, error) {
	var balance model.Balance
	err := self.db.Where("address = ?", addr).Take(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Lamports, nil
}

func (self *postgresStore) putBalance(addr address.Identity, lamports uint64) error {
	if lamports == 0 {
		return self.db.Where("address = ?", addr).Delete(&model.Balance{}).Error
	}

	return self.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"lamports"}),
		}).
		Create(&model.Balance{Address: addr, Lamports: lamports}).
		Error
}
