package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

var userColumns = []interface{}{"id", "email", "name", "profile_image_url", "location", "created_at"}

// UserAdapter implements UserRepository
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a user with its password hash
func (a *UserAdapter) Create(ctx context.Context, user *entities.User, passwordHash string) error {
	var location interface{}
	if user.Location != nil {
		data, err := json.Marshal(user.Location)
		if err != nil {
			return apperrors.NewInternalError("failed to encode user location", err)
		}
		location = string(data)
	}

	record := goqu.Record{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"password_hash":     passwordHash,
		"profile_image_url": nullString(user.ProfileImageURL),
		"location":          location,
		"created_at":        user.CreatedAt,
	}

	query, args, err := a.db.Insert("users").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		err = translateError(err, "user not found", "failed to create user")
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return apperrors.NewConflictError("an account with this email already exists")
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := a.db.From("users").Prepared(true).
		Select(userColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err, "user not found", "failed to get user")
	}
	return user, nil
}

// GetByIDs retrieves several users; missing ids are skipped
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}

	query, args, err := a.db.From("users").Prepared(true).
		Select(userColumns...).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build users query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "users not found", "failed to get users")
	}
	defer rows.Close()

	users := make([]*entities.User, 0, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "users not found", "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "users not found", "failed to iterate users")
	}
	return users, nil
}

// GetCredentialsByEmail looks up a user and password hash by case-insensitive email
func (a *UserAdapter) GetCredentialsByEmail(ctx context.Context, email string) (*entities.Credentials, error) {
	cols := append(append([]interface{}{}, userColumns...), "password_hash")
	query, args, err := a.db.From("users").Prepared(true).
		Select(cols...).
		Where(goqu.Func("LOWER", goqu.C("email")).Eq(strings.ToLower(strings.TrimSpace(email)))).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build credentials query", err)
	}

	var (
		user     entities.User
		image    sql.NullString
		location []byte
		hash     string
	)
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.Name, &image, &location, &user.CreatedAt, &hash,
	)
	if err != nil {
		return nil, translateError(err, "user not found", "failed to get credentials")
	}
	if err := finishUser(&user, image, location); err != nil {
		return nil, err
	}
	return &entities.Credentials{User: &user, PasswordHash: hash}, nil
}

func scanUser(row rowScanner) (*entities.User, error) {
	var (
		user     entities.User
		image    sql.NullString
		location []byte
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &image, &location, &user.CreatedAt); err != nil {
		return nil, err
	}
	if err := finishUser(&user, image, location); err != nil {
		return nil, err
	}
	return &user, nil
}

func finishUser(user *entities.User, image sql.NullString, location []byte) error {
	user.ProfileImageURL = stringPtr(image)
	if len(location) > 0 {
		var loc entities.Location
		if err := json.Unmarshal(location, &loc); err != nil {
			return apperrors.NewInternalError("failed to decode user location", err)
		}
		user.Location = &loc
	}
	return nil
}
