package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUserSuccess(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash, is_active)`)).
		WithArgs("luke@rebellion.org", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	id, err := s.CreateUser(context.Background(), "  Luke@Rebellion.org ", "x-wing")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreateUser(context.Background(), "leia@alderaan.gov", "hope")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserRequiresFields(t *testing.T) {
	s, _ := newMockStore(t)

	if _, err := s.CreateUser(context.Background(), " ", "pw"); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if _, err := s.CreateUser(context.Background(), "han@falcon.space", ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("parsecs"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name     string
		password string
		rows     *sqlmock.Rows
		queryErr error
		wantID   int64
		wantErr  error
	}{
		{
			name:     "valid credentials",
			password: "parsecs",
			rows:     sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).AddRow(int64(3), hash, true),
			wantID:   3,
		},
		{
			name:     "wrong password",
			password: "kessel",
			rows:     sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).AddRow(int64(3), hash, true),
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			password: "parsecs",
			rows:     sqlmock.NewRows([]string{"id", "password_hash", "is_active"}).AddRow(int64(3), hash, false),
			wantErr:  ErrInactiveUser,
		},
		{
			name:     "unknown email",
			password: "parsecs",
			queryErr: sql.ErrNoRows,
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			q := mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).WithArgs("han@falcon.space")
			if tc.queryErr != nil {
				q.WillReturnError(tc.queryErr)
			} else {
				q.WillReturnRows(tc.rows)
			}

			id, err := s.Authenticate(context.Background(), "HAN@falcon.space", tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tc.wantID {
				t.Fatalf("expected id %d, got %d", tc.wantID, id)
			}
		})
	}
}

func TestUserNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.User(context.Background(), 99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "is_active", "created_at"}).
			AddRow(int64(1), "luke@rebellion.org", true, now).
			AddRow(int64(2), "leia@alderaan.gov", true, now))

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 2 || users[1].Email != "leia@alderaan.gov" {
		t.Fatalf("unexpected users: %#v", users)
	}
}
