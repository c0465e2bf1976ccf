package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/labform/internal/config"
	"github.com/smallbiznis/labform/internal/labform/domain"
	"github.com/smallbiznis/labform/internal/migration"
	"github.com/smallbiznis/labform/pkg/db"
	"github.com/smallbiznis/labform/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newSQLRepository(t *testing.T) domain.Repository {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	return NewRepository(conn)
}

func TestRepositoryInsertListDelete(t *testing.T) {
	repo := newSQLRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	forms := []domain.LabForm{
		{ID: 1, CarNo: "TN01", Husk: 1.5, CreatedAt: base, UpdatedAt: base},
		{ID: 2, CarNo: "TN02", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)},
		{ID: 3, CarNo: "TN01", CreatedBy: "lab", CreatedAt: base.Add(2 * time.Minute), UpdatedAt: base.Add(2 * time.Minute)},
	}
	for i := range forms {
		require.NoError(t, repo.Insert(ctx, &forms[i]))
	}

	all, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []snowflake.ID{3, 2, 1}, []snowflake.ID{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "lab", all[0].CreatedBy)
	assert.Equal(t, 1.5, all[2].Husk)
	assert.True(t, base.Equal(all[2].CreatedAt))

	filtered, err := repo.List(ctx, domain.ListFilter{CarNo: "TN01"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, snowflake.ID(3), filtered[0].ID)
	assert.Equal(t, snowflake.ID(1), filtered[1].ID)

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	remaining, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestRepositoryListEmptyIsNotNil(t *testing.T) {
	repo := newSQLRepository(t)

	items, err := repo.List(context.Background(), domain.ListFilter{CarNo: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepositoryWithoutSchemaFails(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	repo := NewRepository(conn)

	_, err = repo.List(context.Background(), domain.ListFilter{})
	assert.Error(t, err)
}

func TestMongoDocRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	form := domain.LabForm{
		ID:            snowflake.ID(1790000000000000000),
		CarNo:         "TN01",
		SiNo:          7,
		PaddyName:     "Ponni",
		TotalHandRice: 66.2,
		CreatedBy:     "lab",
		CreatedAt:     created,
		UpdatedAt:     created,
	}

	doc := toDoc(&form)
	assert.Equal(t, int64(1790000000000000000), doc.DocID)
	assert.Equal(t, form, fromDoc(&doc))
}

func TestMongoRepositoryReportsUnavailableStore(t *testing.T) {
	client := docstore.New(config.Config{}, zap.NewNop())
	repo := NewMongoRepository(client, zap.NewNop())
	ctx := context.Background()

	assert.Error(t, repo.Insert(ctx, &domain.LabForm{ID: 1}))

	_, err := repo.List(ctx, domain.ListFilter{})
	assert.Error(t, err)

	_, err = repo.Delete(ctx, 1)
	assert.Error(t, err)
}

func TestMongoIndexesRetryUntilCreated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := NewMongoRepository(docstore.New(config.Config{}, zap.NewNop()), zap.New(core)).(*mongoRepository)

	calls := 0
	failing := func() error {
		calls++
		return errors.New("not authorized to create index")
	}
	repo.ensureIndexes(failing)
	repo.ensureIndexes(failing)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, logs.FilterMessage("ensuring lab form indexes").Len())

	succeeding := func() error {
		calls++
		return nil
	}
	repo.ensureIndexes(succeeding)
	repo.ensureIndexes(succeeding)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logs.Len())
}
