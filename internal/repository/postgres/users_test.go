package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	tokenHash := "verification-hash"
	user := domain.User{
		ID:                    "user-1",
		Username:              "alice",
		Email:                 "alice@example.com",
		PasswordHash:          "salt:hash",
		IsVerified:            false,
		VerificationTokenHash: &tokenHash,
		CreatedAt:             createdAt,
	}

	mock.ExpectExec(`INSERT INTO auth\.users`).
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsVerified,
			user.VerificationTokenHash,
			user.ResetTokenHash,
			user.ResetTokenExpiresAt,
			user.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	mock.ExpectExec(`INSERT INTO auth\.users`).
		WithArgs(
			"user-1", "alice", "alice@example.com", "salt:hash",
			false, (*string)(nil), (*string)(nil), (*time.Time)(nil), pgxmock.AnyArg(),
		).
		WillReturnError(pgErr)

	err = repo.Create(context.Background(), domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
		CreatedAt:    time.Now().UTC(),
	})

	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Constraint != "users_email_key" {
		t.Fatalf("unexpected constraint %q", dup.Constraint)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash", "is_verified",
		"verification_token_hash", "reset_token_hash", "reset_token_expires_at", "created_at",
	}).AddRow("user-1", "alice", "alice@example.com", "salt:hash", true, nil, nil, nil, createdAt)

	mock.ExpectQuery(`SELECT .+ FROM auth\.users WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != "user-1" || !user.IsVerified {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM auth\.users`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "username", "email", "password_hash", "is_verified",
			"verification_token_hash", "reset_token_hash", "reset_token_expires_at", "created_at",
		}))

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_MarkVerified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE auth\.users SET is_verified = \$1, verification_token_hash = \$2 WHERE id = \$3`).
		WithArgs(true, nil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkVerified(context.Background(), "user-1"); err != nil {
		t.Fatalf("MarkVerified returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_MarkVerifiedMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE auth\.users`).
		WithArgs(true, nil, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkVerified(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdatePasswordClearsResetToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE auth\.users SET password_hash = \$1, reset_token_hash = \$2, reset_token_expires_at = \$3 WHERE id = \$4`).
		WithArgs("new-salt:new-hash", nil, nil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "new-salt:new-hash"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
