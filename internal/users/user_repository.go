package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"garment/internal/repository"
	custom_error "garment/pkg/errors"
	"garment/pkg/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	PersistUser(ctx context.Context, req models.CreateUserRequest, hashedPassword []byte) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *userRepositoryImpl {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(ctx context.Context, req models.CreateUserRequest, hashedPassword []byte) error {
	query := r.repository.GoquDBWrapper.Insert("users").
		Rows(goqu.Record{
			"password_hash": string(hashedPassword),
			"username":      req.Username,
			"fullname":      req.Fullname,
			"role":          req.Role,
		})

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to insert user %s", req.Username))
	}

	return nil
}

func (r *userRepositoryImpl) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.repository.GoquDBWrapper.Select("id", "username", "fullname", "role").
		From("users").
		Order(goqu.I("username").Asc()).
		Executor().
		ScanStructsContext(ctx, &users)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, goqu.Ex{"id": id})
}

// FindByUsername is used by the login handler and includes the password hash.
func (r *userRepositoryImpl) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, goqu.Ex{"username": username})
}

func (r *userRepositoryImpl) findOne(ctx context.Context, where goqu.Ex) (*models.User, error) {
	var user models.User
	found, err := r.repository.GoquDBWrapper.Select("id", "username", "fullname", "password_hash", "role").
		From("users").
		Where(where).
		Executor().
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

func (r *userRepositoryImpl) UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error {
	record := goqu.Record{}
	if changes.Fullname != nil {
		record["fullname"] = *changes.Fullname
	}
	if changes.PasswordHash != nil {
		record["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		record["role"] = *changes.Role
	}

	_, err := r.repository.GoquDBWrapper.Update("users").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}

	return nil
}
