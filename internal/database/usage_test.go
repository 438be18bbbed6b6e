package database_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/quillglow/internal/database"
	"github.com/jonesrussell/quillglow/internal/domain"
)

func TestUsageRepository_Increment(t *testing.T) {
	t.Helper()

	at := time.Date(2026, 3, 31, 23, 30, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		counter   domain.UsageCounter
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name:    "search counter",
			counter: domain.CounterSearches,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, month_year) DO UPDATE")).
					WithArgs(testUserID, "2026-03", 1, 0).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "ai generation counter",
			counter: domain.CounterAIGenerations,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO usage_tracking")).
					WithArgs(testUserID, "2026-03", 0, 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "unknown counter",
			counter:   domain.UsageCounter("bogus"),
			setupMock: func(sqlmock.Sqlmock) {},
			wantErr:   true,
		},
		{
			name:    "database error",
			counter: domain.CounterSearches,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO usage_tracking")).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.setupMock(mock)

			repo := database.NewUsageRepository(db)
			err := repo.Increment(context.Background(), testUserID, tc.counter, at)

			if (err != nil) != tc.wantErr {
				t.Fatalf("Increment() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestUsageRepository_Get(t *testing.T) {
	t.Helper()

	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cols := []string{"user_id", "month_year", "searches_performed", "ai_generations_used", "updated_at"}

	t.Run("existing month", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM usage_tracking")).
			WithArgs(testUserID, "2026-03").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(testUserID, "2026-03", 12, 4, at))

		usage, err := database.NewUsageRepository(db).Get(context.Background(), testUserID, at)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if usage.SearchesPerformed != 12 || usage.AIGenerationsUsed != 4 {
			t.Errorf("unexpected usage: %+v", usage)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("no activity yields zero counters", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM usage_tracking")).
			WithArgs(testUserID, "2026-03").
			WillReturnRows(sqlmock.NewRows(cols))

		usage, err := database.NewUsageRepository(db).Get(context.Background(), testUserID, at)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if usage.MonthYear != "2026-03" || usage.SearchesPerformed != 0 {
			t.Errorf("unexpected usage: %+v", usage)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})
}
