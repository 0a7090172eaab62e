package driven

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-viewer/internal/playlist"
)

const (
	playlistsBucket = "playlists"
)

// PlaylistBoltDBRepository implements the PlaylistRepository port using BoltDB.
type PlaylistBoltDBRepository struct {
	db *bbolt.DB
}

// NewPlaylistBoltDBRepository creates a new BoltDB-backed playlist repository.
// It initializes the required bucket if it doesn't exist.
func NewPlaylistBoltDBRepository(db *bbolt.DB) (*PlaylistBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playlistsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PlaylistBoltDBRepository{db: db}, nil
}

// playlistDTO is used for JSON serialization.
// Seq preserves insertion order, since bbolt iterates keys bytewise.
type playlistDTO struct {
	ID        string `json:"id"`
	Seq       uint64 `json:"seq"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

func dtoToPlaylist(dto playlistDTO) (playlist.Playlist, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return playlist.Playlist{}, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return playlist.Playlist{}, err
	}

	return playlist.ReconstructPlaylist(id, dto.Name, dto.URL, createdAt), nil
}

func bucketOf(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil, errors.New(name + " bucket not found")
	}
	return bucket, nil
}

// Save persists a new playlist to BoltDB.
func (r *PlaylistBoltDBRepository) Save(ctx context.Context, p playlist.Playlist) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, playlistsBucket)
		if err != nil {
			return err
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(playlistDTO{
			ID:        p.ID().String(),
			Seq:       seq,
			Name:      p.Name(),
			URL:       p.URL(),
			CreatedAt: p.CreatedAt().Format(time.RFC3339Nano),
		})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(p.ID().String()), data)
	})
}

// FindByID retrieves a playlist by its ID from BoltDB.
func (r *PlaylistBoltDBRepository) FindByID(ctx context.Context, id uuid.UUID) (playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return playlist.Playlist{}, err
	}

	var p playlist.Playlist

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, playlistsBucket)
		if err != nil {
			return err
		}

		data := bucket.Get([]byte(id.String()))
		if data == nil {
			return playlist.ErrPlaylistNotFound
		}

		var dto playlistDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		p, err = dtoToPlaylist(dto)
		return err
	})

	return p, err
}

// FindAll retrieves all playlists from BoltDB in insertion order.
func (r *PlaylistBoltDBRepository) FindAll(ctx context.Context) ([]playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dtos []playlistDTO

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, playlistsBucket)
		if err != nil {
			return err
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto playlistDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			dtos = append(dtos, dto)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(dtos, func(a, b playlistDTO) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	playlists := make([]playlist.Playlist, 0, len(dtos))
	for _, dto := range dtos {
		p, err := dtoToPlaylist(dto)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	return playlists, nil
}

// Delete removes a playlist by its ID from BoltDB.
func (r *PlaylistBoltDBRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, playlistsBucket)
		if err != nil {
			return err
		}

		key := []byte(id.String())
		if bucket.Get(key) == nil {
			return playlist.ErrPlaylistNotFound
		}

		return bucket.Delete(key)
	})
}

// Count returns the number of stored playlists.
func (r *PlaylistBoltDBRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket, err := bucketOf(tx, playlistsBucket)
		if err != nil {
			return err
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *PlaylistBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		_, err := bucketOf(tx, playlistsBucket)
		return err
	})
}
