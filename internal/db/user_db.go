package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Bio          string
	AvatarURL    string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser создает нового пользователя с email и хешем пароля
func CreateUser(name, email, passwordHash string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var userID uuid.UUID
	err := Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, email, passwordHash).Scan(&userID)

	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return GetUserByID(userID)
}

// GetUserByID получает пользователя по ID
func GetUserByID(userID uuid.UUID) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user User
	var bio, avatarURL, location pgtype.Text

	err := Pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, bio, avatar_url, location, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&bio, &avatarURL, &location, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	// Преобразуем nullable поля
	if bio.Valid {
		user.Bio = bio.String
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}
	if location.Valid {
		user.Location = location.String
	}

	return &user, nil
}

// GetUserByEmail получает пользователя по email
func GetUserByEmail(email string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var userID uuid.UUID

	err := Pool.QueryRow(ctx, `
		SELECT id FROM users WHERE email = $1
	`, email).Scan(&userID)

	if err != nil {
		return nil, err
	}

	return GetUserByID(userID)
}

// EmailExists проверяет, занят ли email
func EmailExists(email string) (bool, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var exists bool
	err := Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("ошибка при проверке email: %w", err)
	}

	return exists, nil
}

// UpdateUserProfile обновляет профиль пользователя
func UpdateUserProfile(userID uuid.UUID, name, bio, avatarURL, location string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	_, err := Pool.Exec(ctx, `
		UPDATE users
		SET name = $1, bio = $2, avatar_url = $3, location = $4, updated_at = NOW()
		WHERE id = $5
	`, name, bio, avatarURL, location, userID)

	if err != nil {
		return nil, fmt.Errorf("ошибка при обновлении профиля: %w", err)
	}

	return GetUserByID(userID)
}

// IsNoRows сообщает, что запрос не нашел строк
func IsNoRows(err error) bool {
	return err == pgx.ErrNoRows
}
