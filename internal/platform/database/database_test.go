package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"warbler/internal/model"
)

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := New(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    "file:migrate_test?mode=memory&cache=shared&_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{&model.User{}, &model.Message{}, &model.Follow{}, &model.Like{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&model.User{}, "Username"))
	assert.True(t, db.Migrator().HasIndex(&model.User{}, "Email"))
}

func TestMigrationSessionUsesBinaryCollationOnMySQL(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "root:@tcp(127.0.0.1:1)/warbler?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	options, ok := migrationSession(db).Get("gorm:table_options")
	require.True(t, ok)
	assert.Equal(t, mysqlTableOptions, options)
	assert.Contains(t, options, "COLLATE=utf8mb4_bin")
}

func TestMigrationSessionLeavesSQLiteAlone(t *testing.T) {
	db, err := New(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    "file:session_test?mode=memory&cache=shared&_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	_, ok := migrationSession(db).Get("gorm:table_options")
	assert.False(t, ok)
}
