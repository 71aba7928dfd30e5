package database

import (
	"context"
	"testing"
	"testing/fstest"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid in development", config.Config{Env: "development"}, true, true, false},
		{"hybrid in production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"auto refused in production", config.Config{Env: "production", DBSchemaMode: "auto"}, false, false, true},
		{"auto allowed with override", config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite always auto", config.Config{Env: "development", DBDriver: "sqlite", DBSchemaMode: "sql"}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrationsLoaded(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Contains(t, all[0].UpScript, "idx_follows_pair")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS likes")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations_Validation(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/README.md":              {Data: []byte("ignored")},
	}
	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "000001_first", got[0].String())
	assert.Equal(t, "second", got[1].Name)

	missingDown := fstest.MapFS{"m/000001_first.up.sql": {Data: []byte("SELECT 1;")}}
	_, err = LoadMigrations(missingDown, "m")
	assert.Error(t, err)

	badName := fstest.MapFS{
		"m/first.up.sql":   {Data: []byte("SELECT 1;")},
		"m/first.down.sql": {Data: []byte("SELECT 1;")},
	}
	_, err = LoadMigrations(badName, "m")
	assert.Error(t, err)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.ErrorContains(t, validateAppliedVersions([]int{1, 7}, registered), "000007")
}

func TestMigrationStore_ApplyAndRevert(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))

	store := NewMigrationStore(db)
	m := Migration{
		Version:    42,
		Name:       "scratch",
		UpScript:   "CREATE TABLE scratch (id INTEGER PRIMARY KEY)",
		DownScript: "DROP TABLE scratch",
	}
	require.NoError(t, store.ApplyMigration(ctx, m))
	assert.True(t, db.Migrator().HasTable("scratch"))

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{42}, applied)

	require.NoError(t, store.RevertMigration(ctx, m))
	assert.False(t, db.Migrator().HasTable("scratch"))

	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestAutoMigrate_EnforcesFollowConstraints(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	a := models.User{Username: "alice", Password: "x"}
	b := models.User{Username: "bob", Password: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error)
	assert.Error(t, db.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error, "duplicate pair")
	assert.Error(t, db.Create(&models.Follow{UserID: a.ID, AuthorID: a.ID}).Error, "self follow")
}

func TestPersistentModels_ReferencedTablesFirst(t *testing.T) {
	all := PersistentModels()
	require.Len(t, all, 6)
	_, first := all[0].(*models.User)
	assert.True(t, first)
}
