package sqlstore

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-fleetbridge/core"
)

// RepositoryFactory builds the sql-backed stores from whatever persistence
// handle the caller has: a raw bun db or a client exposing one.
type RepositoryFactory struct {
	db *bun.DB

	inspectionLinkStore *InspectionLinkStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.inspectionLinkStore != nil {
		return nil
	}
	store, err := NewInspectionLinkStore(f.db)
	if err != nil {
		return err
	}
	f.inspectionLinkStore = store
	return nil
}

func (f *RepositoryFactory) InspectionLinkStore() core.InspectionLinkStore {
	if f == nil {
		return nil
	}
	return f.inspectionLinkStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
