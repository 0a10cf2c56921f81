package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/userauth/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleVersion is returned when a compare-and-swap update lost the race.
	ErrStaleVersion = errors.New("stale reset version")
)

// UserRepository persists users and their profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	// FindWithProfile loads the user together with its profile, if any.
	FindWithProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdatePassword stores hash and bumps the reset version, but only while
	// the stored version still equals expectedVersion.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, expectedVersion int) error
	// UpdateAccount applies both updates atomically. The profile is created
	// when the user has none and profile is not empty.
	UpdateAccount(ctx context.Context, id uuid.UUID, user models.UserUpdate, profile models.ProfileUpdate) error
}

var _ UserRepository = (*GormUserRepository)(nil)

// GormUserRepository implements UserRepository on top of gorm. The gorm
// connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository builds a gorm-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

// FindByID fetches a user by primary key.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByEmail fetches a user by exact email match.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

// FindByPhone fetches the oldest user registered with phone.
func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Order("created_at asc"), "phone_number = ?", phone)
}

// FindWithProfile fetches a user with its profile preloaded.
func (r *GormUserRepository) FindWithProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Preload("Profile"), "id = ?", id)
}

func (r *GormUserRepository) first(q *gorm.DB, cond string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := q.Where(cond, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdatePassword replaces the password hash with a compare-and-swap on the
// reset version so a reset token can only be used once.
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, expectedVersion int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"reset_version": gorm.Expr("reset_version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// UpdateAccount runs the user and profile updates in one transaction. The
// user row is locked first, which also serializes concurrent first edits that
// would otherwise both try to create the profile.
func (r *GormUserRepository) UpdateAccount(ctx context.Context, id uuid.UUID, user models.UserUpdate, profile models.ProfileUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", id).First(&locked).Error
		if err != nil {
			return translate(err)
		}

		if cols := user.Columns(); len(cols) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return translate(err)
			}
		}

		if profile.Empty() {
			return nil
		}
		return upsertProfile(tx, id, profile)
	})
}

func upsertProfile(tx *gorm.DB, userID uuid.UUID, update models.ProfileUpdate) error {
	var profile models.Profile
	err := tx.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.Profile{UserID: userID}
		update.Apply(&profile)
		return translate(tx.Create(&profile).Error)
	case err != nil:
		return translate(err)
	}

	return translate(tx.Model(&profile).Updates(update.Columns()).Error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
