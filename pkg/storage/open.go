package storage

import (
	"fmt"

	"axviral/pkg/catalog"
)

// Store is a media repository that owns an open database handle
type Store interface {
	catalog.Repository
	Close() error
}

const (
	DriverBolt   = "bolt"
	DriverSqlite = "sqlite"
)

// Open opens the store selected by driver at path
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverBolt, "":
		s, err := NewMediaDbStorage(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSqlite:
		s, err := NewMediaSqliteStorage(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
