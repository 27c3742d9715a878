package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var userErrs = errMap{
	notFound: domain.ErrUserNotFound,
	conflict: domain.ErrUserAlreadyExists,
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return userErrs.translateWrite(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, userErrs.translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, userErrs.translate(err)
	}
	return &u, nil
}

// RecordLoginAttempt resets the failure counter on success. On failure it
// increments the counter and, once maxFailed is reached, locks the account
// until now+lockFor. The read and write share a row lock.
func (r *UserRepository) RecordLoginAttempt(ctx context.Context, id uuid.UUID, success bool, maxFailed int, lockFor time.Duration) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, "id = ?", id).Error; err != nil {
			return userErrs.translate(err)
		}

		updates := map[string]any{}
		if success {
			updates["failed_login_count"] = 0
			updates["locked_until"] = nil
			updates["last_login_at"] = now
		} else {
			failed := u.FailedLoginCount + 1
			updates["failed_login_count"] = failed
			if failed >= maxFailed {
				updates["failed_login_count"] = 0
				updates["locked_until"] = now.Add(lockFor)
			}
		}
		return tx.Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash":       hash,
		"password_changed_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
