package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskdeck/internal/models"
)

type TelegramLinkRepository interface {
	Create(ctx context.Context, chatID int64, code string, ttl time.Duration) (*models.TelegramLink, error)
	UseByCode(ctx context.Context, code string) (*models.TelegramLink, error)
}

type telegramLinkRepository struct{ db *sql.DB }

func NewTelegramLinkRepository(db *sql.DB) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Create(ctx context.Context, chatID int64, code string, ttl time.Duration) (*models.TelegramLink, error) {
	expiresAt := time.Now().Add(ttl)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO telegram_links (chat_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, chat_id, code, expires_at, used, created_at
	`, chatID, code, expiresAt)

	var l models.TelegramLink
	if err := row.Scan(&l.ID, &l.ChatID, &l.Code, &l.ExpiresAt, &l.Used, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// UseByCode consumes an unexpired, unused code. Unknown, expired and reused
// codes all yield models.ErrNotFound.
func (r *telegramLinkRepository) UseByCode(ctx context.Context, code string) (*models.TelegramLink, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var l models.TelegramLink
	err = tx.QueryRowContext(ctx, `
		SELECT id, chat_id, code, expires_at, used, created_at
		FROM telegram_links
		WHERE code=$1
		FOR UPDATE
	`, code).Scan(&l.ID, &l.ChatID, &l.Code, &l.ExpiresAt, &l.Used, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if l.Used || time.Now().After(l.ExpiresAt) {
		return nil, models.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `UPDATE telegram_links SET used=true WHERE id=$1`, l.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	l.Used = true
	return &l, nil
}
