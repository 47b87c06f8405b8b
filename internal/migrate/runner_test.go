package migrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunnerValidation(t *testing.T) {
	source := fstest.MapFS{}
	db := &sql.DB{}

	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing db", opts: Options{Source: source, TypeName: "schemagate.contexts.Core"}},
		{name: "missing source", opts: Options{DB: db, TypeName: "schemagate.contexts.Core"}},
		{name: "missing type name", opts: Options{DB: db, Source: source}},
		{
			name: "version table with quotes",
			opts: Options{DB: db, Source: source, TypeName: "x", VersionTable: `sch"ema`},
		},
		{
			name: "version table with spaces",
			opts: Options{DB: db, Source: source, TypeName: "x", VersionTable: "drop table users"},
		},
		{
			name: "version table upper case",
			opts: Options{DB: db, Source: source, TypeName: "x", VersionTable: "Migrations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(tt.opts)
			assert.Nil(t, runner)
			assert.Error(t, err)
		})
	}
}

func TestNewRunnerDefaultsVersionTable(t *testing.T) {
	runner, err := NewRunner(Options{
		DB:       &sql.DB{},
		Source:   fstest.MapFS{},
		TypeName: "schemagate.contexts.Core",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultVersionTable, runner.versionTable)
}

func TestRunnerTypeName(t *testing.T) {
	runner, err := NewRunner(Options{
		DB:       &sql.DB{},
		Source:   fstest.MapFS{},
		TypeName: "schemagate.contexts.Audit",
	})
	require.NoError(t, err)
	assert.Equal(t, "schemagate.contexts.Audit", runner.TypeName())
}

func TestSQLFilesSortedAndFiltered(t *testing.T) {
	source := fstest.MapFS{
		"migrations/0002_sessions.sql": &fstest.MapFile{Data: []byte("--")},
		"migrations/0001_users.sql":    &fstest.MapFile{Data: []byte("--")},
		"migrations/0010_indexes.sql":  &fstest.MapFile{Data: []byte("--")},
		"migrations/README.md":         &fstest.MapFile{Data: []byte("docs")},
	}

	runner, err := NewRunner(Options{
		DB:       &sql.DB{},
		Source:   source,
		Dir:      "migrations",
		TypeName: "schemagate.contexts.Core",
	})
	require.NoError(t, err)

	files, err := runner.sqlFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.sql", "0002_sessions.sql", "0010_indexes.sql"}, files)
}

func TestSQLFilesMissingDir(t *testing.T) {
	runner, err := NewRunner(Options{
		DB:       &sql.DB{},
		Source:   fstest.MapFS{},
		Dir:      "migrations",
		TypeName: "schemagate.contexts.Core",
	})
	require.NoError(t, err)

	_, err = runner.sqlFiles()
	assert.Error(t, err)
}

func TestEmbeddedContextsRegisterDistinctIdentities(t *testing.T) {
	db := &sql.DB{}

	core, err := NewCoreContext(db, nil)
	require.NoError(t, err)
	audit, err := NewAuditContext(db, nil)
	require.NoError(t, err)

	assert.Equal(t, CoreTypeName, core.TypeName())
	assert.Equal(t, AuditTypeName, audit.TypeName())
	assert.NotEqual(t, core.versionTable, audit.versionTable)

	coreFiles, err := core.sqlFiles()
	require.NoError(t, err)
	assert.NotEmpty(t, coreFiles)

	auditFiles, err := audit.sqlFiles()
	require.NoError(t, err)
	assert.NotEmpty(t, auditFiles)
}
