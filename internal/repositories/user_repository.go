package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskdeck/internal/models"
)

// ErrDuplicate is returned when a unique column (username) already exists.
var ErrDuplicate = errors.New("duplicate")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, p models.Profile) error
	UpdatePassword(ctx context.Context, id int64, hash string) error

	// Telegram helpers
	UpdateTelegramLink(ctx context.Context, userID int64, chatID int64, enable bool) error
	ClearTelegramLink(ctx context.Context, userID int64) error
	GetTelegramSettings(ctx context.Context, userID int64) (chatID int64, notify bool, err error)
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, phone, username, profile_picture, password_hash, created_at,
	COALESCE(telegram_chat_id,0), telegram_linked_at, COALESCE(notify_tasks_telegram,TRUE)`

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	var linkedAt sql.NullTime
	err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Username, &u.ProfilePicture, &u.PasswordHash, &u.CreatedAt,
		&u.TelegramChatID, &linkedAt, &u.NotifyTasksTelegram,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if linkedAt.Valid {
		t := linkedAt.Time
		u.TelegramLinkedAt = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, phone, username, profile_picture, password_hash, notify_tasks_telegram)
		VALUES ($1,$2,$3,$4,$5,$6,TRUE)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.Name, user.Email, user.Phone, user.Username, user.ProfilePicture, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	if err == nil {
		user.NotifyTasksTelegram = true
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, p models.Profile) error {
	const q = `
		UPDATE users
		SET name=$1, email=$2, phone=$3, profile_picture=$4
		WHERE id=$5
	`
	res, err := r.DB.ExecContext(ctx, q, p.Name, p.Email, p.Phone, p.ProfilePicture, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ===== telegram helpers =====

func (r *userRepository) UpdateTelegramLink(ctx context.Context, userID int64, chatID int64, enable bool) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET telegram_chat_id=$1, telegram_linked_at=NOW(), notify_tasks_telegram=$2
		WHERE id=$3
	`, chatID, enable, userID)
	return err
}

func (r *userRepository) ClearTelegramLink(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET telegram_chat_id=NULL, telegram_linked_at=NULL
		WHERE id=$1
	`, userID)
	return err
}

func (r *userRepository) GetTelegramSettings(ctx context.Context, userID int64) (int64, bool, error) {
	var chat sql.NullInt64
	var notify bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT telegram_chat_id, notify_tasks_telegram FROM users WHERE id=$1`, userID,
	).Scan(&chat, &notify)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, models.ErrNotFound
		}
		return 0, false, err
	}
	if chat.Valid {
		return chat.Int64, notify, nil
	}
	return 0, notify, nil
}

func (r *userRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_chat_id = $1 LIMIT 1`, chatID))
}
