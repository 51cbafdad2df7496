// Package storage реализует хранилище данных на основе PostgreSQL
// для учёта пользователей бота и фактов оплаты. Таблицы paid_users и
// trial_users — монотонные множества: запись добавляется один раз
// и никогда не удаляется, повторные вставки игнорируются.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь отсутствует в таблице users.
var ErrUserNotFound = errors.New("user not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(10)
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// ===== USER METHODS =====

// SaveUser регистрирует пользователя при первом обращении.
// Повторная регистрация — no-op.
func (s *Storage) SaveUser(ctx context.Context, userID int64) error {
	const op = "storage.SaveUser"

	query := `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserLanguage сохраняет выбранный пользователем язык интерфейса.
func (s *Storage) UpdateUserLanguage(ctx context.Context, userID int64, lang string) error {
	const op = "storage.UpdateUserLanguage"

	query := `UPDATE users SET lang = $1 WHERE user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, lang, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// GetUserLanguage возвращает язык пользователя. Для незарегистрированного
// пользователя возвращает ErrUserNotFound, для зарегистрированного без
// выбранного языка — язык по умолчанию.
func (s *Storage) GetUserLanguage(ctx context.Context, userID int64) (string, error) {
	const op = "storage.GetUserLanguage"

	query := `SELECT lang FROM users WHERE user_id = $1`
	var lang sql.NullString
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return models.DefaultLang(lang.String), nil
}

// ListUsers возвращает всех зарегистрированных пользователей.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"

	query := `SELECT user_id, lang FROM users`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var lang sql.NullString
		if err := rows.Scan(&user.ID, &lang); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Lang = models.DefaultLang(lang.String)
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ===== ENTITLEMENT METHODS =====

// MarkPaid отмечает пользователя как оплатившего пожизненный доступ.
// Вставка идемпотентна: повторное подтверждение оплаты не является
// ошибкой. Возвращает true, когда запись появилась впервые, и false
// на дубликате уведомления.
func (s *Storage) MarkPaid(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkPaid"

	query := `INSERT INTO paid_users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows > 0, nil
}

// MarkTrialConsumed отмечает, что пользователь израсходовал единственный
// бесплатный анализ. Вызывается только после фактической доставки анализа.
func (s *Storage) MarkTrialConsumed(ctx context.Context, userID int64) error {
	const op = "storage.MarkTrialConsumed"

	query := `INSERT INTO trial_users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsPaid сообщает, есть ли у пользователя оплаченный доступ.
func (s *Storage) IsPaid(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.IsPaid"

	query := `SELECT EXISTS (SELECT 1 FROM paid_users WHERE user_id = $1)`
	var paid bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&paid); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return paid, nil
}

// HasRemainingTrial сообщает, не израсходован ли ещё бесплатный анализ.
func (s *Storage) HasRemainingTrial(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.HasRemainingTrial"

	query := `SELECT EXISTS (SELECT 1 FROM trial_users WHERE user_id = $1)`
	var consumed bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&consumed); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return !consumed, nil
}

// CountStats возвращает агрегированную статистику для команды /status.
func (s *Storage) CountStats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.CountStats"

	query := `SELECT
		(SELECT count(*) FROM users),
		(SELECT count(*) FROM paid_users),
		(SELECT count(*) FROM trial_users)`
	var stats models.Stats
	err := s.DB.QueryRowContext(ctx, query).Scan(&stats.TotalUsers, &stats.PaidUsers, &stats.TrialUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
