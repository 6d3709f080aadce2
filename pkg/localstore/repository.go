package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mao65123/logmee/internal/database"
	log "github.com/sirupsen/logrus"
)

// Repository stores one opaque snapshot blob per (user, key). The key carries
// the schema version, mirroring the versioned storage key the snapshot has
// always lived under.
type Repository interface {
	// Get returns the stored blob, or (nil, nil) when nothing is stored.
	Get(ctx context.Context, userId string, key string) ([]byte, error)
	Put(ctx context.Context, userId string, key string, data []byte) error
}

type RepositoryImpl struct {
	db *database.DB
}

func NewRepository(db *database.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, userId string, key string) ([]byte, error) {
	query := r.db.Rebind("SELECT data FROM local_snapshots WHERE user_id = ? AND snapshot_key = ?")
	var data []byte
	err := r.db.QueryRowContext(ctx, query, userId, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read snapshot: %w", err)
		log.Error(err)
		return nil, err
	}
	return data, nil
}

func (r *RepositoryImpl) Put(ctx context.Context, userId string, key string, data []byte) error {
	query := r.db.Rebind(`INSERT INTO local_snapshots (user_id, snapshot_key, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, snapshot_key) DO UPDATE SET
				data = excluded.data,
				updated_at = excluded.updated_at`)
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, userId, key, data, time.Now().UnixMilli()); err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	return nil
}
