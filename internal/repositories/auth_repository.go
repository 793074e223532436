package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ninthwaka_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// AuthRepository defines the interface for user account persistence.
type AuthRepository interface {
	CreateUser(user *models.User) (int64, error)
	GetUserByID(userID int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUsers(role *string) ([]models.User, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, phone_number, role, created_at, updated_at`

func scanUser(s interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	var phone sql.NullString
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.PhoneNumber = &phone.String
	}
	return u, nil
}

func (r *authRepository) CreateUser(user *models.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt

	query := `INSERT INTO users (username, email, password_hash, full_name, phone_number, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err := r.db.QueryRow(query,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.PhoneNumber, user.Role,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *authRepository) GetUserByID(userID int64) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *authRepository) GetUserByUsername(username string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by username %q: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

func (r *authRepository) GetUsers(role *string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if role != nil && *role != "" {
		query += ` WHERE role = $1`
		args = append(args, *role)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}
