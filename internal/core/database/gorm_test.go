package database

import (
	"path/filepath"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass string
		wantUser, wantPass   string
		wantTLS              string
		wantCharset          string
	}{
		{"native", "u:p@tcp(db:3306)/lib", "", "", "u", "p", "", "charset=utf8mb4"},
		{"native keeps charset", "u:p@tcp(db:3306)/lib?charset=latin1", "", "", "u", "p", "", "charset=latin1"},
		{"url form", "mysql://u:p@db:3306/lib", "", "", "u", "p", "", "charset=utf8mb4"},
		{"jdbc with overrides", "jdbc:mysql://db:3306/lib?useSSL=false&useUnicode=true&characterEncoding=utf8", "root", "pw", "root", "pw", "false", "charset=utf8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dsn, err := normalizeMySQLDSN(tc.in, tc.user, tc.pass)
			require.NoError(t, err)
			assert.Contains(t, dsn, tc.wantCharset)
			assert.NotContains(t, dsn, "useUnicode")

			cfg, err := mysqldrv.ParseDSN(dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.wantUser, cfg.User)
			assert.Equal(t, tc.wantPass, cfg.Passwd)
			assert.Equal(t, "db:3306", cfg.Addr)
			assert.Equal(t, "lib", cfg.DBName)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, tc.wantTLS, cfg.TLSConfig)
		})
	}
}

func TestNormalizeMySQLDSNRejectsGarbage(t *testing.T) {
	_, err := normalizeMySQLDSN("not a dsn", "", "")
	assert.Error(t, err)
	_, err = normalizeMySQLDSN("mysql://db/lib?serverTimezone=Nowhere/Never", "", "")
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/lib", maskDSN("root:pw@tcp(db:3306)/lib"))
	assert.Equal(t, "tcp(db:3306)/lib", maskDSN("tcp(db:3306)/lib"))
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGormSQLiteMigrate(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "lib.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "books", "checkouts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
