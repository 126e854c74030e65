package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"shopcore/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int) error
	List(limit, offset int) ([]*models.User, error)
	GetCount() (int, error)

	// verification bookkeeping
	RecordEmailAttempt(userID int) error
	MarkEmailSuccess(userID int) error
	MarkVerified(userID int) error

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, email, first_name, last_name, phone, password_hash,
	is_verified, is_active, is_staff, created_at, updated_at,
	verification_email_last_attempt, verification_email_last_success,
	verification_email_attempts,
	refresh_token, refresh_expires_at, refresh_revoked
`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		phone       sql.NullString
		lastAttempt sql.NullTime
		lastSuccess sql.NullTime
		rt          sql.NullString
		rte         sql.NullTime
		rr          sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &phone, &u.PasswordHash,
		&u.IsVerified, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
		&lastAttempt, &lastSuccess, &u.VerificationEmailAttempts,
		&rt, &rte, &rr,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	if lastAttempt.Valid {
		t := lastAttempt.Time
		u.VerificationEmailLastAttempt = &t
	}
	if lastSuccess.Valid {
		t := lastSuccess.Time
		u.VerificationEmailLastSuccess = &t
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			username, email, first_name, last_name, phone, password_hash,
			is_verified, is_active, is_staff, created_at, updated_at,
			verification_email_attempts
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW(),0)
		RETURNING id, created_at, updated_at
	`
	var phone any
	if user.Phone != "" {
		phone = user.Phone
	}
	if err := r.DB.QueryRow(q,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		phone,
		user.PasswordHash,
		user.IsVerified,
		user.IsActive,
		user.IsStaff,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRow(q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.DB.QueryRow(q, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by username: %w", err)
	}
	return u, nil
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET username=$1, email=$2, first_name=$3, last_name=$4, phone=$5,
		    password_hash=$6, updated_at=NOW()
		WHERE id=$7
	`
	var phone any
	if user.Phone != "" {
		phone = user.Phone
	}
	_, err := r.DB.Exec(q,
		user.Username, user.Email, user.FirstName, user.LastName, phone,
		user.PasswordHash, user.ID,
	)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY username LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&c)
	return c, err
}

// ===== verification bookkeeping =====

// RecordEmailAttempt stamps the attempt time and bumps the counter in one
// statement. The increment is relative so concurrent attempts never lose an
// update.
func (r *userRepository) RecordEmailAttempt(userID int) error {
	const q = `
		UPDATE users
		SET verification_email_last_attempt = NOW(),
		    verification_email_attempts = verification_email_attempts + 1
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, userID)
	if err != nil {
		return fmt.Errorf("user record email attempt: %w", err)
	}
	return nil
}

func (r *userRepository) MarkEmailSuccess(userID int) error {
	const q = `
		UPDATE users
		SET verification_email_last_success = NOW()
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, userID)
	if err != nil {
		return fmt.Errorf("user mark email success: %w", err)
	}
	return nil
}

// MarkVerified flips the flag forward only; verifying an already-verified
// account is a no-op at the row level.
func (r *userRepository) MarkVerified(userID int) error {
	const q = `
		UPDATE users
		SET is_verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_verified = FALSE
	`
	_, err := r.DB.Exec(q, userID)
	if err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) ClearRefresh(userID int) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1
	`, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	u, err := scanUser(r.DB.QueryRow(q, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by refresh token: %w", err)
	}
	return u, nil
}
