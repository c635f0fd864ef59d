package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/wardrobix/internal/models"
)

var itemColumns = []string{"id", "name", "formality", "color", "type", "subtype"}

func setupClothesMock(t *testing.T) (*PostgresClothesRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewPostgresClothesRepository(db), mock, func() { db.Close() }
}

func TestListByUser_Success(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(itemColumns).
		AddRow(int64(1), "Tee", "casual", "white", "top", "t-shirt").
		AddRow(int64(2), "Jeans", "casual", "blue", "bottom", "jeans")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM clothing_items WHERE user_id = $1 ORDER BY id`)).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[1].Subtype != "jeans" {
		t.Errorf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM clothing_items").WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(itemColumns))

	items, err := repo.ListByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestListByUser_QueryError(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM clothing_items").WithArgs(int64(5)).WillReturnError(errors.New("query fail"))

	if _, err := repo.ListByUser(context.Background(), 5); err == nil {
		t.Error("expected error")
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`WHERE user_id = $1 AND id = $2`)
	mock.ExpectQuery(query).WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(int64(1), "Tee", "casual", "white", "top", "t-shirt"))
	mock.ExpectQuery(query).WithArgs(int64(5), int64(9)).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	it, err := repo.GetByID(context.Background(), 5, 1)
	if err != nil || it.Name != "Tee" {
		t.Errorf("GetByID = %+v, %v", it, err)
	}
	if _, err := repo.GetByID(context.Background(), 5, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	f := models.ClothingFields{Name: "Blue Shirt", Formality: "casual", Color: "blue", Type: "top", Subtype: "shirt"}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO clothing_items`)).
		WithArgs(int64(5), f.Name, f.Formality, f.Color, f.Type, f.Subtype).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	it, err := repo.Create(context.Background(), 5, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID != 11 || it.ClothingFields != f {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	f := models.ClothingFields{Name: "Navy Shirt", Color: "navy", Type: "top"}
	query := regexp.QuoteMeta(`UPDATE clothing_items SET`)
	mock.ExpectQuery(query).
		WithArgs(int64(5), int64(11), f.Name, f.Formality, f.Color, f.Type, f.Subtype).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(query).
		WithArgs(int64(6), int64(11), f.Name, f.Formality, f.Color, f.Type, f.Subtype).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	it, err := repo.Update(context.Background(), 5, 11, f)
	if err != nil || it.ID != 11 || it.Name != "Navy Shirt" {
		t.Errorf("Update = %+v, %v", it, err)
	}
	// another user's item
	if _, err := repo.Update(context.Background(), 6, 11, f); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, cleanup := setupClothesMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`DELETE FROM clothing_items WHERE user_id = $1 AND id = $2`)
	mock.ExpectExec(query).WithArgs(int64(5), int64(11)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(int64(5), int64(12)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(query).WithArgs(int64(5), int64(13)).WillReturnError(errors.New("exec fail"))

	if err := repo.Delete(context.Background(), 5, 11); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), 5, 12); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), 5, 13); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected exec error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
