package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	SchoolID     null.String    `db:"school_id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row userRow) model() user.User {
	isActive := row.IsActive
	return user.User{
		ID:           row.ID,
		SchoolID:     row.SchoolID,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     &isActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

const userColumns = `id, school_id, name, username, email, is_active, roles, password_hash,
	created_at, updated_at, last_login`

var userOrderFields = map[string]bool{"name": true, "username": true, "email": true, "created_at": true}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	if username == "" && email == "" {
		return nil
	}

	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+userColumns+` FROM "user"
		WHERE (username = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')`,
		username, email)
	if err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}
	for _, row := range rows {
		if excluded[row.ID] {
			continue
		}
		if username != "" && row.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	isActive := usr.IsActive == nil || *usr.IsActive
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO "user" (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		usr.ID, usr.SchoolID, usr.Name, usr.Username, usr.Email, isActive, pq.StringArray(usr.Roles),
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "user_username_uix"):
			return user.User{}, user.ErrUsernameExists
		case isUniqueViolation(err, "user_email_uix"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE `
	var arg interface{}
	switch {
	case filter.ID != "":
		query += `id = $1`
		arg = filter.ID
	case filter.Username != "":
		query += `username = $1`
		arg = filter.Username
	case filter.Email != "":
		query += `email = $1`
		arg = filter.Email
	case filter.UsernameOrEmail != "":
		query += `(username = $1 OR email = $1)`
		arg = filter.UsernameOrEmail
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "getting user")
	}
	return row.model(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var cb condBuilder
	if filter != nil {
		if filter.Search != "" {
			cb.where(`(name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)`,
				contains(filter.Search), contains(filter.Search), contains(filter.Search))
		}
		if filter.SchoolID != "" {
			cb.where(`school_id = $%d`, filter.SchoolID)
		}
		if len(filter.Roles) > 0 {
			// role filters match by prefix so "admin:" selects all admins
			prefixes := make([]string, len(filter.Roles))
			for i, role := range filter.Roles {
				prefixes[i] = role + "%"
			}
			cb.where(`EXISTS (SELECT 1 FROM unnest(roles) AS role WHERE role LIKE ANY($%d))`, pq.StringArray(prefixes))
		}
		if filter.IsActive != nil {
			cb.where(`is_active = $%d`, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			cb.where(`created_at >= $%d`, filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			cb.where(`created_at <= $%d`, filter.CreatedTo)
		}
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM "user"` + cb.clause() + orderBy(ordering, userOrderFields, "name")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.model()
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE "user"
		SET school_id     = $2,
		    name          = $3,
		    username      = $4,
		    email         = $5,
		    is_active     = COALESCE($6, is_active),
		    roles         = $7,
		    password_hash = $8,
		    updated_at    = $9,
		    last_login    = $10
		WHERE id = $1`,
		usr.ID, usr.SchoolID, usr.Name, usr.Username, usr.Email, isActive, pq.StringArray(usr.Roles),
		usr.PasswordHash, usr.UpdatedAt, null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "user_username_uix"):
			return user.User{}, user.ErrUsernameExists
		case isUniqueViolation(err, "user_email_uix"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
