package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Ítems de auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAuditItemRepo_UpsertPorClaveCompuesta(t *testing.T) {
	repo := sqlite.NewAuditItemRepository(openDB(t))
	ctx := context.Background()
	audited := now.Add(time.Minute)
	it := entity.AuditItem{
		SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools",
		UnitCost: decimal.RequireFromString("12.50"), SystemQuantity: 3,
		Status: entity.StatusPending, UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, []entity.AuditItem{it}))

	it.PhysicalQuantity = entity.IntPtr(3)
	it.Status = entity.StatusMatched
	it.LastAuditedAt = &audited
	require.NoError(t, repo.Upsert(ctx, []entity.AuditItem{it}))

	got, err := repo.SelectAll(ctx, repository.AuditItemFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Widget", got[0].Name)
	require.NotNil(t, got[0].PhysicalQuantity)
	assert.Equal(t, 3, *got[0].PhysicalQuantity)
	assert.Equal(t, entity.StatusMatched, got[0].Status)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got[0].UnitCost))
	require.NotNil(t, got[0].LastAuditedAt)
	assert.True(t, audited.Equal(*got[0].LastAuditedAt))
}

func TestAuditItemRepo_LoteEsAtomico(t *testing.T) {
	repo := sqlite.NewAuditItemRepository(openDB(t))
	ctx := context.Background()
	good := entity.AuditItem{SKU: "A1", Location: "L1", Name: "W", Category: "T", Status: entity.StatusPending, UpdatedAt: now}
	bad := entity.AuditItem{SKU: "B2", Location: "L1", Name: "", Category: "T", Status: entity.StatusPending, UpdatedAt: now}

	require.Error(t, repo.Upsert(ctx, []entity.AuditItem{good, bad}))
	got, err := repo.SelectAll(ctx, repository.AuditItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuditItemRepo_FiltroYConteo(t *testing.T) {
	repo := sqlite.NewAuditItemRepository(openDB(t))
	ctx := context.Background()
	mk := func(sku, loc string) entity.AuditItem {
		return entity.AuditItem{SKU: sku, Location: loc, Name: "n", Category: "c", Status: entity.StatusPending, UpdatedAt: now}
	}
	require.NoError(t, repo.Upsert(ctx, []entity.AuditItem{mk("B", "L2"), mk("A", "L1"), mk("A", "L2")}))

	got, err := repo.SelectAll(ctx, repository.AuditItemFilter{SKU: "A"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "L1", got[0].Location)

	n, err := repo.CountByLocation(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.DeleteAll(ctx))
	n, err = repo.CountByLocation(ctx, "L2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestLocationRepo_NombreUnico(t *testing.T) {
	repo := sqlite.NewLocationRepository(openDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.Location{ID: "1", Name: "L1", Active: true, CreatedAt: now, UpdatedAt: now}))

	err := repo.Create(ctx, &entity.Location{ID: "2", Name: "L1", CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := repo.GetByName(ctx, "L1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Active)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLocationRepo_UpdateYDelete(t *testing.T) {
	repo := sqlite.NewLocationRepository(openDB(t))
	ctx := context.Background()
	loc := &entity.Location{ID: "1", Name: "L1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, loc))

	loc.Description = "pasillo"
	require.NoError(t, repo.Update(ctx, loc))
	require.ErrorIs(t, repo.Update(ctx, &entity.Location{ID: "x", Name: "X", UpdatedAt: now}), domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "1"))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuestionario
// ──────────────────────────────────────────────────────────────────────────────

func TestAnswerRepo_UnaRespuestaPorClave(t *testing.T) {
	db := openDB(t)
	questions := sqlite.NewQuestionRepository(db)
	answers := sqlite.NewAnswerRepository(db)
	ctx := context.Background()
	q := &entity.Question{
		ID: "q1", Text: "Estado", Type: entity.QuestionMultiSelect,
		Options:   []entity.QuestionOption{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, questions.Create(ctx, q))

	require.NoError(t, answers.Upsert(ctx, []entity.Answer{{QuestionID: "q1", LocationID: "loc-1", OptionIDs: []string{"a"}, AnsweredOn: now}}))
	require.NoError(t, answers.Upsert(ctx, []entity.Answer{{QuestionID: "q1", LocationID: "loc-1", OptionIDs: []string{"a", "b"}, AnsweredOn: now}}))

	list, err := answers.ListByLocation(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a", "b"}, list[0].OptionIDs)

	got, err := questions.GetByID(ctx, "q1")
	require.NoError(t, err)
	assert.Len(t, got.Options, 2)
}

func TestTxRunner_BorradoEnCascada(t *testing.T) {
	db := openDB(t)
	questions := sqlite.NewQuestionRepository(db)
	answers := sqlite.NewAnswerRepository(db)
	ctx := context.Background()
	require.NoError(t, questions.Create(ctx, &entity.Question{ID: "q1", Text: "x", Type: entity.QuestionText, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, answers.Upsert(ctx, []entity.Answer{
		{QuestionID: "q1", LocationID: "loc-1", Text: "a", AnsweredOn: now},
		{QuestionID: "q1", LocationID: "loc-2", Text: "b", AnsweredOn: now},
	}))

	// sin borrar respuestas la llave foránea lo impide
	require.ErrorIs(t, questions.Delete(ctx, "q1"), domain.ErrConflict)

	runner := sqlite.NewTxRunner(db)
	boom := errors.New("boom")
	err := runner.Run(ctx, func(qr repository.QuestionRepository, ar repository.AnswerRepository) error {
		if _, err := ar.DeleteByQuestion(ctx, "q1"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	all, err := answers.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "rollback conserva las respuestas")

	removed := 0
	require.NoError(t, runner.Run(ctx, func(qr repository.QuestionRepository, ar repository.AnswerRepository) error {
		n, err := ar.DeleteByQuestion(ctx, "q1")
		if err != nil {
			return err
		}
		removed = n
		return qr.Delete(ctx, "q1")
	}))
	assert.Equal(t, 2, removed)
	got, err := questions.GetByID(ctx, "q1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
