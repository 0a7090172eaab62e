package driven

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	settingsBucket = "settings"

	lastOpenedKey = "last_opened_playlist"
)

// SettingsBoltDBRepository implements the SettingsRepository port using BoltDB.
type SettingsBoltDBRepository struct {
	db *bbolt.DB
}

// NewSettingsBoltDBRepository creates a new BoltDB-backed settings repository.
func NewSettingsBoltDBRepository(db *bbolt.DB) (*SettingsBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(settingsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &SettingsBoltDBRepository{db: db}, nil
}

// LastOpened returns the last opened playlist ID, if one was recorded.
func (r *SettingsBoltDBRepository) LastOpened(ctx context.Context) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}

	var (
		id    uuid.UUID
		found bool
	)

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, settingsBucket)
		if err != nil {
			return err
		}

		data := bucket.Get([]byte(lastOpenedKey))
		if len(data) == 0 {
			return nil
		}

		parsed, err := uuid.ParseBytes(data)
		if err != nil {
			return err
		}
		id, found = parsed, true
		return nil
	})

	return id, found, err
}

// SetLastOpened records id as the last opened playlist.
func (r *SettingsBoltDBRepository) SetLastOpened(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, settingsBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(lastOpenedKey), []byte(id.String()))
	})
}

// ClearLastOpened removes the last opened marker.
func (r *SettingsBoltDBRepository) ClearLastOpened(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, settingsBucket)
		if err != nil {
			return err
		}
		return bucket.Delete([]byte(lastOpenedKey))
	})
}
