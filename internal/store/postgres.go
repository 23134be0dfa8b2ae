package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyagen/channeldeck/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

var channelColumns = []string{"id", "playlist_id", "position", "name", "url", "logo", "group_title", "tvg_id", "tvg_name"}

// CreatePlaylist inserts the playlist row and copies its channels in one transaction.
func (p *Postgres) CreatePlaylist(ctx context.Context, pl *models.Playlist) error {
	id := newID()
	if pl.Channels == nil {
		pl.Channels = []models.Channel{}
	}
	assignChannelIDs(pl.Channels)

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO playlists (id, name, source_url) VALUES ($1, $2, $3)
			 RETURNING created_at, updated_at`,
			id, pl.Name, pl.SourceURL,
		).Scan(&pl.CreatedAt, &pl.UpdatedAt); err != nil {
			return fmt.Errorf("insert playlist: %w", err)
		}
		return copyChannels(ctx, tx, id, pl.Channels)
	})
	if err != nil {
		return fmt.Errorf("CreatePlaylist: %w", err)
	}
	pl.ID = id
	return nil
}

func copyChannels(ctx context.Context, tx pgx.Tx, playlistID string, channels []models.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	rows := make([][]any, len(channels))
	for i, ch := range channels {
		rows[i] = []any{ch.ID, playlistID, i, ch.Name, ch.URL, ch.Logo, ch.Group, ch.TvgID, ch.TvgName}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"channels"}, channelColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy channels: %w", err)
	}
	return nil
}

// GetPlaylist returns a playlist with its channels ordered by position.
func (p *Postgres) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var pl models.Playlist
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, source_url, created_at, updated_at FROM playlists WHERE id = $1`, id,
	).Scan(&pl.ID, &pl.Name, &pl.SourceURL, &pl.CreatedAt, &pl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetPlaylist: %w", err)
	}

	byPlaylist, err := p.channels(ctx, `WHERE playlist_id = $1`, id)
	if err != nil {
		return nil, err
	}
	pl.Channels = byPlaylist[id]
	if pl.Channels == nil {
		pl.Channels = []models.Channel{}
	}
	return &pl, nil
}

// ListPlaylists returns all playlists, oldest first.
func (p *Postgres) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, source_url, created_at, updated_at FROM playlists ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListPlaylists: %w", err)
	}
	playlists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Playlist, error) {
		var pl models.Playlist
		err := row.Scan(&pl.ID, &pl.Name, &pl.SourceURL, &pl.CreatedAt, &pl.UpdatedAt)
		return pl, err
	})
	if err != nil {
		return nil, fmt.Errorf("ListPlaylists: %w", err)
	}

	byPlaylist, err := p.channels(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].Channels = byPlaylist[playlists[i].ID]
		if playlists[i].Channels == nil {
			playlists[i].Channels = []models.Channel{}
		}
	}
	return playlists, nil
}

// channels loads channel rows (optionally filtered by where) grouped by playlist id.
func (p *Postgres) channels(ctx context.Context, where string, args ...any) (map[string][]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT playlist_id, id, name, url, logo, group_title, tvg_id, tvg_name
		 FROM channels `+where+` ORDER BY playlist_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Channel)
	for rows.Next() {
		var playlistID string
		var ch models.Channel
		if err := rows.Scan(&playlistID, &ch.ID, &ch.Name, &ch.URL, &ch.Logo, &ch.Group, &ch.TvgID, &ch.TvgName); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out[playlistID] = append(out[playlistID], ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	return out, nil
}

// UpdatePlaylist updates name and/or source url.
func (p *Postgres) UpdatePlaylist(ctx context.Context, id string, fields PlaylistUpdate) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE playlists SET name = COALESCE($2, name), source_url = COALESCE($3, source_url), updated_at = NOW()
		 WHERE id = $1`,
		id, fields.Name, fields.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("UpdatePlaylist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePlaylist deletes a playlist; channels go with it (ON DELETE CASCADE).
func (p *Postgres) DeletePlaylist(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeletePlaylist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceChannels deletes all channels of the playlist and copies in the new list.
func (p *Postgres) ReplaceChannels(ctx context.Context, id string, channels []models.Channel) error {
	assignChannelIDs(channels)
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if err := touchPlaylist(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE playlist_id = $1`, id); err != nil {
			return fmt.Errorf("delete channels: %w", err)
		}
		return copyChannels(ctx, tx, id, channels)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("ReplaceChannels: %w", err)
	}
	return nil
}

// AddChannel appends a channel after the current last position.
func (p *Postgres) AddChannel(ctx context.Context, playlistID string, ch *models.Channel) error {
	id := newID()
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if err := touchPlaylist(ctx, tx, playlistID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO channels (id, playlist_id, position, name, url, logo, group_title, tvg_id, tvg_name)
			 VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM channels WHERE playlist_id = $2),
			         $3, $4, $5, $6, $7, $8)`,
			id, playlistID, ch.Name, ch.URL, ch.Logo, ch.Group, ch.TvgID, ch.TvgName,
		)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("AddChannel: %w", err)
	}
	ch.ID = id
	return nil
}

// UpdateChannel updates the non-nil fields of one channel.
func (p *Postgres) UpdateChannel(ctx context.Context, playlistID, channelID string, fields ChannelUpdate) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE channels SET
			   name = COALESCE($3, name), url = COALESCE($4, url), logo = COALESCE($5, logo),
			   group_title = COALESCE($6, group_title), tvg_id = COALESCE($7, tvg_id), tvg_name = COALESCE($8, tvg_name)
			 WHERE playlist_id = $1 AND id = $2`,
			playlistID, channelID, fields.Name, fields.URL, fields.Logo, fields.Group, fields.TvgID, fields.TvgName,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return touchPlaylist(ctx, tx, playlistID)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("UpdateChannel: %w", err)
	}
	return nil
}

// DeleteChannel removes one channel. Positions of the others are left as they are.
func (p *Postgres) DeleteChannel(ctx context.Context, playlistID, channelID string) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM channels WHERE playlist_id = $1 AND id = $2`, playlistID, channelID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return touchPlaylist(ctx, tx, playlistID)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("DeleteChannel: %w", err)
	}
	return nil
}

// touchPlaylist bumps updated_at, returning ErrNotFound if the playlist is gone.
func touchPlaylist(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAccount inserts an Xtream account.
func (p *Postgres) CreateAccount(ctx context.Context, a *models.XtreamAccount) error {
	id := newID()
	err := p.pool.QueryRow(ctx,
		`INSERT INTO xtream_accounts (id, name, server_url, username, password)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		id, a.Name, a.ServerURL, a.Username, a.Password,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	a.ID = id
	return nil
}

const accountColumns = `id, name, server_url, username, password, created_at, updated_at`

func scanAccount(row pgx.Row) (models.XtreamAccount, error) {
	var a models.XtreamAccount
	err := row.Scan(&a.ID, &a.Name, &a.ServerURL, &a.Username, &a.Password, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetAccount returns one account.
func (p *Postgres) GetAccount(ctx context.Context, id string) (*models.XtreamAccount, error) {
	a, err := scanAccount(p.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM xtream_accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return &a, nil
}

// ListAccounts returns all accounts, oldest first.
func (p *Postgres) ListAccounts(ctx context.Context) ([]models.XtreamAccount, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+accountColumns+` FROM xtream_accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.XtreamAccount, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates the non-nil account fields.
func (p *Postgres) UpdateAccount(ctx context.Context, id string, fields AccountUpdate) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE xtream_accounts SET
		   name = COALESCE($2, name), server_url = COALESCE($3, server_url),
		   username = COALESCE($4, username), password = COALESCE($5, password), updated_at = NOW()
		 WHERE id = $1`,
		id, fields.Name, fields.ServerURL, fields.Username, fields.Password,
	)
	if err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount deletes an account.
func (p *Postgres) DeleteAccount(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM xtream_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
