package pgstore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var Logger = logger.GetLogger("store")

// kvEntry is the row layout of the storefront_kv table.
type kvEntry struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "storefront_kv"
}

// Options configures the postgres store.
type Options struct {
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
	// OpTimeout bounds every single store operation.
	OpTimeout time.Duration
	// Migrate creates the table if it does not exist.
	Migrate bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() *Options {
	return &Options{
		ConnectTimeout: 5 * time.Second,
		OpTimeout:      10 * time.Second,
		Migrate:        true,
	}
}

type storeImpl struct {
	db     *gorm.DB
	opts   Options
	closed atomic.Bool
}

// NewPostgresStore connects to the database named by dsn and returns a store
// backed by the storefront_kv table.
func NewPostgresStore(dsn string, opts *Options) (store.IStore, error) {
	if dsn == "" {
		return nil, store.NewError(store.RetCInvalidOperation, "postgres dsn is required")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "open gorm postgres", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "resolve postgres sql db handle", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, store.WrapError(store.RetCInternalError, "ping postgres", err)
	}

	if opts.Migrate {
		if err := db.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
			_ = sqlDB.Close()
			return nil, store.WrapError(store.RetCInternalError, "migrate storefront_kv", err)
		}
	}

	Logger.Debugf("connected to postgres store")
	return &storeImpl{db: db, opts: *opts}, nil
}

func (s *storeImpl) session() (*gorm.DB, context.CancelFunc, error) {
	if s.closed.Load() {
		return nil, nil, store.NewError(store.RetCClosed, "postgres store is closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.OpTimeout)
	return s.db.WithContext(ctx), cancel, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	db, cancel, err := s.session()
	if err != nil {
		return err
	}
	defer cancel()

	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	row := kvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row)
	if res.Error != nil {
		return store.WrapError(store.RetCInternalError, "set "+key, res.Error)
	}
	return nil
}

func (s *storeImpl) Delete(key string) error {
	db, cancel, err := s.session()
	if err != nil {
		return err
	}
	defer cancel()

	if res := db.Where("key = ?", key).Delete(&kvEntry{}); res.Error != nil {
		return store.WrapError(store.RetCInternalError, "delete "+key, res.Error)
	}
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	db, cancel, err := s.session()
	if err != nil {
		return nil, false, err
	}
	defer cancel()

	var row kvEntry
	err = db.Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, store.WrapError(store.RetCInternalError, "get "+key, err)
	}
	if row.Value == nil {
		row.Value = []byte{}
	}
	return row.Value, true, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	db, cancel, err := s.session()
	if err != nil {
		return false, err
	}
	defer cancel()

	var count int64
	if err := db.Model(&kvEntry{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, store.WrapError(store.RetCInternalError, "has "+key, err)
	}
	return count > 0, nil
}

func (s *storeImpl) Keys(prefix string) ([]string, error) {
	db, cancel, err := s.session()
	if err != nil {
		return nil, err
	}
	defer cancel()

	keys := make([]string, 0)
	err = db.Model(&kvEntry{}).
		Where("starts_with(key, ?)", prefix).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Pluck("key", &keys).
		Error
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "list keys", err)
	}
	return keys, nil
}

func (s *storeImpl) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return store.WrapError(store.RetCInternalError, "resolve postgres sql db handle", err)
	}
	if err := sqlDB.Close(); err != nil {
		return store.WrapError(store.RetCInternalError, "close postgres", err)
	}
	return nil
}
