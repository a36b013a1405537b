package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"civicreport/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "phone_number", "email", "name", "password_hash", "is_verified",
		"verification_token", "verification_expires", "role", "reputation_score",
		"total_reports", "resolved_reports", "last_login", "is_active",
		"created_at", "updated_at",
	})
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	it(func() {
		user := &models.User{
			PhoneNumber:  "+9779812345678",
			PasswordHash: "$2a$10$hash",
			Role:         models.RoleCitizen,
		}

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

		if _, err := d.CreateUser(context.Background(), user); !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetUserByPhone(t *testing.T) {
	it(func() {
		rows := userRows().AddRow(
			1, "+9779812345678", nil, "Asha", "$2a$10$hash", false,
			"", nil, models.RoleCitizen, 0,
			2, 1, nil, true,
			testTime(), testTime(),
		)

		mock.ExpectQuery(`SELECT .+ FROM users WHERE phone_number = \?`).
			WithArgs("+9779812345678").
			WillReturnRows(rows)

		user, err := d.GetUserByPhone(context.Background(), "+9779812345678")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Name != "Asha" || user.Role != models.RoleCitizen {
			t.Errorf("wrong user: %+v", user)
		}

		mock.ExpectQuery(`SELECT .+ FROM users WHERE phone_number = \?`).
			WithArgs("+9779800000000").
			WillReturnRows(userRows())

		if _, err := d.GetUserByPhone(context.Background(), "+9779800000000"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestAwardResolution(t *testing.T) {
	it(func() {
		mock.ExpectExec(`UPDATE users\s+SET resolved_reports = resolved_reports \+ 1,\s+reputation_score = GREATEST\(reputation_score \+ \?, 0\)\s+WHERE id = \?`).
			WithArgs(10, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.AwardResolution(context.Background(), 4, 10); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
