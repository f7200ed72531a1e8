package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/pkg/log"
)

type VideosRepo struct {
	db *sql.DB
}

func NewVideosRepo(db *sql.DB) *VideosRepo {
	return &VideosRepo{db: db}
}

const videoColumns = `id, title, channel_name, link, published_at, summary, transcript`

func (r *VideosRepo) ListChannels(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT channel_name FROM videos ORDER BY channel_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, name)
	}
	return channels, rows.Err()
}

func (r *VideosRepo) FindByTitle(ctx context.Context, title string) (*core.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE lower(title) LIKE '%' || lower(?) || '%'
		ORDER BY published_at DESC LIMIT 1`

	v, err := scanVideo(r.db.QueryRowContext(ctx, query, title))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find video by title: %w", err)
	}
	return v, nil
}

func (r *VideosRepo) CountChannel(ctx context.Context, name string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos WHERE lower(channel_name) LIKE '%' || lower(?) || '%'`,
		name,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channel videos: %w", err)
	}
	return count, nil
}

func (r *VideosRepo) RecentByChannel(ctx context.Context, name string, limit int) ([]core.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE lower(channel_name) LIKE '%' || lower(?) || '%'
		ORDER BY published_at DESC LIMIT ?`
	return r.queryVideos(ctx, query, name, limit)
}

func (r *VideosRepo) RecentByTitle(ctx context.Context, title string, limit int) ([]core.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE lower(title) LIKE '%' || lower(?) || '%'
		ORDER BY published_at DESC LIMIT ?`
	return r.queryVideos(ctx, query, title, limit)
}

// SearchSimilar ranks every embedded record by cosine similarity in process.
// The corpus is small enough that a brute-force scan beats maintaining a
// vector index.
func (r *VideosRepo) SearchSimilar(ctx context.Context, vector []float32, topK int) ([]core.ScoredVideo, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+videoColumns+`, embedding FROM videos WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embedded videos: %w", err)
	}
	defer rows.Close()

	var scored []core.ScoredVideo
	for rows.Next() {
		var (
			v           core.Video
			publishedAt sql.NullTime
			blob        []byte
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.ChannelName, &v.Link, &publishedAt, &v.Summary, &v.Transcript, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if publishedAt.Valid {
			v.Date = publishedAt.Time
		}

		emb, err := deserializeVector(blob)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int64("id", v.ID).Msg("skipping video with bad embedding")
			continue
		}

		scored = append(scored, core.ScoredVideo{Video: v, Score: cosineSimilarity(vector, emb)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (r *VideosRepo) Insert(ctx context.Context, v core.Video) error {
	var blob []byte
	if len(v.Embedding) > 0 {
		var err error
		blob, err = serializeVector(v.Embedding)
		if err != nil {
			return err
		}
	}

	var publishedAt any
	if !v.Date.IsZero() {
		publishedAt = v.Date.UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO videos (title, channel_name, link, published_at, summary, transcript, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Title, v.ChannelName, v.Link, publishedAt, v.Summary, v.Transcript, blob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *VideosRepo) queryVideos(ctx context.Context, query string, args ...any) ([]core.Video, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []core.Video
	for rows.Next() {
		var (
			v           core.Video
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.ChannelName, &v.Link, &publishedAt, &v.Summary, &v.Transcript); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if publishedAt.Valid {
			v.Date = publishedAt.Time
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*core.Video, error) {
	var (
		v           core.Video
		publishedAt sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.Title, &v.ChannelName, &v.Link, &publishedAt, &v.Summary, &v.Transcript); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		v.Date = publishedAt.Time
	}
	return &v, nil
}
