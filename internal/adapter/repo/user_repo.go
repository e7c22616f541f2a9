package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"foodshare/internal/domain"
	"foodshare/internal/infra"
	"foodshare/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a user; a taken email yields domain.ErrConflict.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Email, user.PasswordHash)
	if err := row.Scan(&user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account with email %s already exists", domain.ErrConflict, user.Email)
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email)
	return scanUser(row)
}

// Delete removes a user by email.
func (r *UserRepositoryPG) Delete(ctx context.Context, email string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteUser, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UserRepositoryMemory keeps accounts in process memory.
type UserRepositoryMemory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepositoryMemory creates an empty in-memory user repo.
func NewUserRepositoryMemory() *UserRepositoryMemory {
	return &UserRepositoryMemory{users: make(map[string]domain.User)}
}

func (r *UserRepositoryMemory) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return fmt.Errorf("%w: account with email %s already exists", domain.ErrConflict, user.Email)
	}
	user.CreatedAt = time.Now().UTC()
	r.users[user.Email] = *user
	return nil
}

func (r *UserRepositoryMemory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepositoryMemory) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
	}
	delete(r.users, email)
	return nil
}

var (
	_ domain.UserRepository = (*UserRepositoryPG)(nil)
	_ domain.UserRepository = (*UserRepositoryMemory)(nil)
)
