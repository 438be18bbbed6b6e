package database_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jonesrussell/quillglow/internal/database"
	"github.com/jonesrussell/quillglow/internal/domain"
)

var bookmarkCols = []string{"id", "user_id", "title", "url", "description", "thumbnail", "source_type", "created_at"}

func TestBookmarkRepository_Create(t *testing.T) {
	t.Helper()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	desc := "An overview of photosynthesis"

	testCases := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "creates bookmark",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(bookmarkCols).
					AddRow(uuid.NewString(), testUserID, "Photosynthesis", "https://example.org/p", desc, nil, "article", now)
				mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, url) DO NOTHING")).
					WithArgs(sqlmock.AnyArg(), testUserID, "Photosynthesis", "https://example.org/p",
						desc, nil, "article", sqlmock.AnyArg()).
					WillReturnRows(rows)
			},
		},
		{
			name: "conflict returns no row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO search_bookmarks")).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name: "unique violation",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO search_bookmarks")).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO search_bookmarks")).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("any"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.setupMock(mock)

			repo := database.NewBookmarkRepository(db)
			created, err := repo.Create(context.Background(), &domain.Bookmark{
				UserID:      testUserID,
				Title:       "Photosynthesis",
				URL:         "https://example.org/p",
				Description: &desc,
				SourceType:  domain.SourceTypeArticle,
			})

			switch {
			case tc.wantErr == nil:
				if err != nil {
					t.Fatalf("Create() unexpected error: %v", err)
				}
				if created.SourceType != domain.SourceTypeArticle {
					t.Errorf("source type = %q", created.SourceType)
				}
				if created.Description == nil || *created.Description != desc {
					t.Errorf("description = %v", created.Description)
				}
			case errors.Is(tc.wantErr, domain.ErrAlreadyExists):
				if !errors.Is(err, domain.ErrAlreadyExists) {
					t.Fatalf("Create() error = %v, want ErrAlreadyExists", err)
				}
			default:
				if err == nil || errors.Is(err, domain.ErrAlreadyExists) {
					t.Fatalf("Create() error = %v, want wrapped database error", err)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestBookmarkRepository_List(t *testing.T) {
	t.Helper()

	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(bookmarkCols).
		AddRow(uuid.NewString(), testUserID, "Newer", "https://example.org/b", nil, nil, "video", now).
		AddRow(uuid.NewString(), testUserID, "Older", "https://example.org/a", nil, nil, "article", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(testUserID).
		WillReturnRows(rows)

	repo := database.NewBookmarkRepository(db)
	bookmarks, err := repo.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bookmarks) != 2 || bookmarks[0].Title != "Newer" {
		t.Fatalf("unexpected bookmarks: %+v", bookmarks)
	}
	if bookmarks[0].Description != nil {
		t.Errorf("expected nil description, got %q", *bookmarks[0].Description)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBookmarkRepository_Delete(t *testing.T) {
	t.Helper()

	id := uuid.New()

	testCases := []struct {
		name        string
		setupMock   func(mock sqlmock.Sqlmock)
		wantDeleted int64
		wantErr     bool
	}{
		{
			name: "deletes owned bookmark",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM search_bookmarks WHERE id = $1 AND user_id = $2")).
					WithArgs(id, testUserID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantDeleted: 1,
		},
		{
			name: "missing or foreign bookmark is not an error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM search_bookmarks")).
					WithArgs(id, testUserID).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantDeleted: 0,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM search_bookmarks")).
					WillReturnError(errors.New("deadlock detected"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.setupMock(mock)

			repo := database.NewBookmarkRepository(db)
			deleted, err := repo.Delete(context.Background(), id, testUserID)

			if (err != nil) != tc.wantErr {
				t.Fatalf("Delete() error = %v, wantErr %v", err, tc.wantErr)
			}
			if deleted != tc.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tc.wantDeleted)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}
