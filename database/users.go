package database

import (
	"context"
	"database/sql"
	"fmt"

	"civicreport/models"
)

const userColumns = `id, phone_number, email, name, password_hash, is_verified,
		verification_token, verification_expires, role, reputation_score,
		total_reports, resolved_reports, last_login, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                   models.User
		email               sql.NullString
		verificationExpires sql.NullTime
		lastLogin           sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.PhoneNumber, &email, &u.Name, &u.PasswordHash, &u.IsVerified,
		&u.VerificationToken, &verificationExpires, &u.Role, &u.ReputationScore,
		&u.TotalReports, &u.ResolvedReports, &lastLogin, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		u.Email = email.String
	}
	if verificationExpires.Valid {
		u.VerificationExpires = &verificationExpires.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// CreateUser persists a new account. Phone number and email are unique.
func (d *Database) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	var email interface{}
	if u.Email != "" {
		email = u.Email
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO users (phone_number, email, name, password_hash, role,
			verification_token, verification_expires)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.PhoneNumber, email, u.Name, u.PasswordHash, u.Role,
		u.VerificationToken, u.VerificationExpires,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, models.ErrAlreadyExists
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves an account by id.
func (d *Database) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return userOrNotFound(row)
}

// GetUserByPhone retrieves an account by phone number.
func (d *Database) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone_number = ?", phone)
	return userOrNotFound(row)
}

func userOrNotFound(row rowScanner) (*models.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// UpdateLastLogin stamps the account's last login time.
func (d *Database) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE users SET last_login = NOW() WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// IncrementTotalReports bumps the account's submitted-report counter.
func (d *Database) IncrementTotalReports(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE users SET total_reports = total_reports + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment total reports: %w", err)
	}
	return nil
}

// AwardResolution bumps the resolved-report counter and awards reputation
// points. Reputation is floor-clamped at zero.
func (d *Database) AwardResolution(ctx context.Context, id int64, points int) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE users
		SET resolved_reports = resolved_reports + 1,
		    reputation_score = GREATEST(reputation_score + ?, 0)
		WHERE id = ?`, points, id)
	if err != nil {
		return fmt.Errorf("failed to award resolution: %w", err)
	}
	return nil
}

// ListUsers returns one page of accounts, optionally filtered by role,
// newest first.
func (d *Database) ListUsers(ctx context.Context, role string, page, limit int) (*models.UserPage, error) {
	where := ""
	var args []interface{}
	if role != "" {
		where = " WHERE role = ?"
		args = append(args, role)
	}

	var total int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users"+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &models.UserPage{
		Users:       users,
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
	}, nil
}
