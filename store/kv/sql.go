package kv

import (
	"context"
	"encoding/hex"
	"time"

	"ctoken/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// Record row of the kv_records table, Key is the hex encoded store key
type Record struct {
	Key       string    `gorm:"column:k;type:varchar(768);primary_key"`
	Value     []byte    `gorm:"column:v"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName gorm table name
func (Record) TableName() string {
	return "kv_records"
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Record{})
		if err := tx.AutoMigrate(Record{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// keys carry raw seq bytes, text columns reject NUL
func sqlKey(key []byte) string {
	return hex.EncodeToString(key)
}

// SQL store on a relational database
type SQL struct {
	db *db.DB
}

// NewSQL new sql backed store
func NewSQL(db *db.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Get(ctx context.Context, key []byte) ([]byte, error) {
	var r Record
	if err := s.db.View().Where("k = ?", sqlKey(key)).First(&r).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrKeyNotFound
		}

		return nil, err
	}

	return r.Value, nil
}

// Write applies the batch in one database transaction
func (s *SQL) Write(ctx context.Context, batch *core.KVBatch) error {
	now := time.Now()

	return s.db.Tx(func(tx *db.DB) error {
		for _, op := range batch.Ops {
			query := tx.Update().Where("k = ?", sqlKey(op.Key))
			if op.Delete {
				if err := query.Delete(Record{}).Error; err != nil {
					return err
				}

				continue
			}

			r := Record{Key: sqlKey(op.Key)}
			if err := query.Assign(Record{Value: op.Value, UpdatedAt: now}).FirstOrCreate(&r).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Close the connection pool is owned by the caller of db.MustOpen
func (s *SQL) Close() error {
	return nil
}
