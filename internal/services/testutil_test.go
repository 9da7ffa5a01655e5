package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/reveriehq/reverie-backend/internal/database"
)

// setupRedis points the global Redis client at a fresh miniredis instance.
func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prev := database.RedisClient
	database.RedisClient = rdb
	t.Cleanup(func() {
		rdb.Close()
		database.RedisClient = prev
	})
	return mr
}

// setupPostgresMock points the global Postgres handle at a sqlmock database.
func setupPostgresMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	prev := database.PostgresDB
	database.PostgresDB = db
	t.Cleanup(func() {
		db.Close()
		database.PostgresDB = prev
	})
	return mock
}

// seedSession stores a session token bound to an external identity handle.
func seedSession(t *testing.T, mr *miniredis.Miniredis, token, externalID string) {
	t.Helper()
	if err := mr.Set(SessionKeyPrefix+token, externalID); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func testTime() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

// userRow builds the row ResolveUserByExternalID scans.
func userRow(id string, externalID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "external_id", "email", "name", "created_at", "updated_at"}).
		AddRow(id, externalID, "sam@example.com", "Sam", testTime(), testTime())
}

func expectUserLookup(mock sqlmock.Sqlmock, id, externalID string) {
	mock.ExpectQuery(`SELECT id, external_id, email, name, created_at, updated_at`).
		WillReturnRows(userRow(id, externalID))
}

func expectUserMissing(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT id, external_id, email, name, created_at, updated_at`).
		WillReturnError(sql.ErrNoRows)
}
