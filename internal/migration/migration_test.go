package migration

import (
	"testing"

	"github.com/smallbiznis/labform/internal/config"
	"github.com/smallbiznis/labform/internal/labform/domain"
	"github.com/smallbiznis/labform/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAutoMigratesNonPostgres(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn, config.DBTypeSQLite))
	assert.True(t, conn.Migrator().HasTable(&domain.LabForm{}))
	assert.True(t, conn.Migrator().HasIndex(&domain.LabForm{}, "idx_lab_forms_car_no_created_at"))
	assert.True(t, conn.Migrator().HasIndex(&domain.LabForm{}, "idx_lab_forms_created_at"))

	// Idempotent on restart.
	require.NoError(t, Run(conn, config.DBTypeSQLite))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"000001_create_lab_forms.down.sql",
		"000001_create_lab_forms.up.sql",
	}, names)
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
