package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/edgeql/sqlexec"
)

func TestCapabilities(t *testing.T) {
	caps := Capabilities()
	require.Equal(t, sqlexec.ArgsNamed, caps.Args)
	require.True(t, caps.Supports("array"))
	require.False(t, caps.Supports("range"))
	require.False(t, caps.Supports("vector"))
}

func TestOpen_Memory(t *testing.T) {
	exec, err := Open(":memory:")
	require.NoError(t, err)
	defer exec.Close()

	require.Equal(t, 1, exec.DB().Stats().MaxOpenConnections)

	out, err := exec.QueryJSON(context.Background(), `select json_object('n', $n)`, map[string]any{"n": "x"})
	require.NoError(t, err)
	require.Equal(t, `[{"n":"x"}]`, out)
}

func TestOpen_File(t *testing.T) {
	path := t.TempDir() + "/fixtures.db"
	exec, err := Open(path)
	require.NoError(t, err)
	defer exec.Close()

	_, err = exec.DB().Exec(`create table t (v text)`)
	require.NoError(t, err)
	_, err = exec.DB().Exec(`insert into t values ('{"a":1}')`)
	require.NoError(t, err)

	out, err := exec.QueryJSON(context.Background(), `select v from t`, nil)
	require.NoError(t, err)
	require.Equal(t, `[{"a":1}]`, out)
}
