package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aora/backend/internal/backend"
	"github.com/aora/backend/internal/db"
	"github.com/aora/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for video documents.
type PostgresVideoRepository struct {
	pool   db.Pool
	videos string
	users  string
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool, tables Tables) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool, videos: tables.Videos, users: tables.Users}
}

// Create stores a new video document.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO `+r.videos+` (id, title, prompt, thumbnail, video, creator_id, liked_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, video.ID, video.Title, video.Prompt, video.Thumbnail, video.VideoURL, video.CreatorID,
		models.UniqueIDs(video.LikedBy), video.CreatedAt, video.UpdatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// Get fetches a single video with its creator.
func (r *PostgresVideoRepository) Get(ctx context.Context, id string) (models.Video, error) {
	row := r.pool.QueryRow(ctx, r.selectVideos()+`
        WHERE v.id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Update applies the non-nil fields of update and returns the stored result.
func (r *PostgresVideoRepository) Update(ctx context.Context, id string, update models.VideoUpdate, updatedAt time.Time) (models.Video, error) {
	sets := []string{"updated_at = $2"}
	args := []any{id, updatedAt}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Prompt != nil {
		add("prompt", *update.Prompt)
	}
	if update.Thumbnail != nil {
		add("thumbnail", *update.Thumbnail)
	}
	if update.VideoURL != nil {
		add("video", *update.VideoURL)
	}
	if update.LikedBy != nil {
		add("liked_by", models.UniqueIDs(*update.LikedBy))
	}

	tag, err := r.pool.Exec(ctx, `
        UPDATE `+r.videos+`
        SET `+strings.Join(sets, ", ")+`
        WHERE id = $1
    `, args...)
	if err != nil {
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Video{}, ErrNotFound
	}

	return r.Get(ctx, id)
}

// ToggleLike flips userID's membership in liked_by within a single UPDATE, so
// concurrent toggles by different users never overwrite each other.
func (r *PostgresVideoRepository) ToggleLike(ctx context.Context, id, userID string, updatedAt time.Time) (models.Video, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE `+r.videos+`
        SET liked_by = CASE
                WHEN $2 = ANY(liked_by) THEN array_remove(liked_by, $2)
                ELSE array_append(liked_by, $2)
            END,
            updated_at = $3
        WHERE id = $1
    `, id, userID, updatedAt)
	if err != nil {
		return models.Video{}, fmt.Errorf("toggle video like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Video{}, ErrNotFound
	}

	return r.Get(ctx, id)
}

// List returns videos matching query, newest first.
func (r *PostgresVideoRepository) List(ctx context.Context, query models.VideoQuery) ([]models.Video, error) {
	var (
		where []string
		args  []any
	)
	if query.CreatorID != "" {
		args = append(args, query.CreatorID)
		where = append(where, fmt.Sprintf("v.creator_id = $%d", len(args)))
	}
	if query.TitleSearch != "" {
		args = append(args, "%"+escapeLike(query.TitleSearch)+"%")
		where = append(where, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}
	if query.LikedBy != "" {
		args = append(args, query.LikedBy)
		where = append(where, fmt.Sprintf("$%d = ANY(v.liked_by)", len(args)))
	}

	sql := r.selectVideos()
	if len(where) > 0 {
		sql += "\n        WHERE " + strings.Join(where, " AND ")
	}
	sql += "\n        ORDER BY v.created_at DESC"
	if query.Limit > 0 {
		args = append(args, query.Limit)
		sql += fmt.Sprintf("\n        LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

func (r *PostgresVideoRepository) selectVideos() string {
	return `
        SELECT v.id, v.title, v.prompt, v.thumbnail, v.video, v.creator_id, v.liked_by, v.created_at, v.updated_at,
               u.id, u.account_id, u.email, u.username, u.avatar, u.created_at
        FROM ` + r.videos + ` v
        JOIN ` + r.users + ` u ON u.id = v.creator_id`
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.Title, &video.Prompt, &video.Thumbnail, &video.VideoURL, &video.CreatorID, &video.LikedBy, &video.CreatedAt, &video.UpdatedAt,
		&video.Creator.ID, &video.Creator.AccountID, &video.Creator.Email, &video.Creator.Username, &video.Creator.Avatar, &video.Creator.CreatedAt,
	)
	if err != nil {
		return models.Video{}, err
	}
	if video.LikedBy == nil {
		video.LikedBy = []string{}
	}
	video.CreatedAt = video.CreatedAt.UTC()
	video.UpdatedAt = video.UpdatedAt.UTC()
	return video, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var (
	_ backend.AccountStore = (*PostgresAccountRepository)(nil)
	_ backend.UserStore    = (*PostgresUserRepository)(nil)
	_ backend.VideoStore   = (*PostgresVideoRepository)(nil)
)
