package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"002_posts.sql":      {Data: []byte("CREATE TABLE posts ()")},
		"001_users.sql":      {Data: []byte("CREATE TABLE users ()")},
		"001_users.down.sql": {Data: []byte("DROP TABLE users")},
		"010_ads.sql":        {Data: []byte("CREATE TABLE ads ()")},
		"README.md":          {Data: []byte("not a migration")},
	}

	r := NewRunner(nil, fsys)
	got, err := r.Load()
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Sorted numerically, not lexically.
	assert.Equal(t, []int{1, 2, 10}, []int{got[0].Version, got[1].Version, got[2].Version})

	assert.Equal(t, "users", got[0].Name)
	assert.Equal(t, "CREATE TABLE users ()", got[0].UpSQL)
	assert.Equal(t, "DROP TABLE users", got[0].DownSQL)

	// No down file is fine.
	assert.Empty(t, got[1].DownSQL)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "malformed filename",
			fsys: fstest.MapFS{"users.sql": {Data: []byte("x")}},
		},
		{
			name: "two up files for one version",
			fsys: fstest.MapFS{
				"001_users.sql":  {Data: []byte("x")},
				"001_users2.sql": {Data: []byte("y")},
			},
		},
		{
			name: "conflicting names for one version",
			fsys: fstest.MapFS{
				"001_users.sql":      {Data: []byte("x")},
				"001_posts.down.sql": {Data: []byte("y")},
			},
		},
		{
			name: "down file without up file",
			fsys: fstest.MapFS{"003_orphan.down.sql": {Data: []byte("x")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, tt.fsys).Load()
			require.Error(t, err)
		})
	}
}

func TestLoadEmptyDir(t *testing.T) {
	got, err := NewRunner(nil, fstest.MapFS{}).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
