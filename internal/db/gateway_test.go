package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projman/internal/models"
)

type storeCase struct {
	name string
	file string
	open func(path string) Gateway
}

var storeCases = []storeCase{
	{"sqlite", "projects.db", func(p string) Gateway { return NewSQLiteStore(p) }},
	{"yaml", "projects.yaml", func(p string) Gateway { return NewYAMLStore(p) }},
}

// fixture builds a collection that touches every stored attribute
func fixture(t *testing.T) Collection {
	t.Helper()
	m := models.NewProjectsManager()

	home, err := m.AddProject("home", "chores and repairs")
	require.NoError(t, err)
	paint := home.AddTask("paint fence", models.PriorityLow)
	require.NoError(t, paint.Assign("alice"))
	paint.SetState(models.StateDone)
	dropped := home.AddTask("dropped", models.PriorityHigh)
	home.RemoveTask(dropped)
	home.AddTask("fix sink: urgent", models.PriorityHigh).SetState(models.StateInProgress)

	_, err = m.AddProject("empty", "")
	require.NoError(t, err)

	gone, err := m.AddProject("gone", "removed before save")
	require.NoError(t, err)
	m.RemoveProject(gone)

	work, err := m.AddProject("work", "multi\nline description")
	require.NoError(t, err)
	work.AddTask("write report", models.PriorityMedium)

	last, err := m.AddProject("last", "its id only survives in the counter")
	require.NoError(t, err)
	m.RemoveProject(last)

	return CollectionOf(m)
}

func assertSameProjects(t *testing.T, want, got []*models.Project) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i].Record(), got[i].Record()
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Title, g.Title)
		assert.Equal(t, w.Description, g.Description)
		assert.Equal(t, w.NextTaskID, g.NextTaskID)
		assert.True(t, w.Created.Equal(g.Created), "created: want %v got %v", w.Created, g.Created)
		require.Len(t, g.Tasks, len(w.Tasks))
		for j := range w.Tasks {
			wt, gt := w.Tasks[j], g.Tasks[j]
			assert.Equal(t, wt.ID, gt.ID)
			assert.Equal(t, wt.Description, gt.Description)
			assert.Equal(t, wt.Priority, gt.Priority)
			assert.Equal(t, wt.State, gt.State)
			assert.Equal(t, wt.Assignee, gt.Assignee)
			assert.True(t, wt.LastUpdated.Equal(gt.LastUpdated), "last updated: want %v got %v", wt.LastUpdated, gt.LastUpdated)
		}
		assert.Equal(t, want[i].State(), got[i].State())
	}
}

func TestGateway_RoundTrip(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sc.file)
			store := sc.open(path)
			want := fixture(t)

			require.NoError(t, store.Save(want))
			got, err := store.Load()
			require.NoError(t, err)
			assertSameProjects(t, want.Projects, got.Projects)
			assert.Equal(t, 5, got.NextProjectID)

			m := models.NewProjectsManager()
			require.NoError(t, m.Restore(got.Projects, got.NextProjectID))
			next, err := m.AddProject("new", "")
			require.NoError(t, err)
			assert.Equal(t, 5, next.ID(), "removed ids are not handed out again after a reload")

			home, ok := m.ProjectByID(0)
			require.True(t, ok)
			assert.Equal(t, 3, home.AddTask("later", models.PriorityLow).ID())
			paint, ok := home.TaskByID(0)
			require.True(t, ok)
			assert.ErrorIs(t, paint.Assign("bob"), models.ErrAlreadyAssigned)
		})
	}
}

func TestGateway_SaveOverwrites(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			store := sc.open(filepath.Join(t.TempDir(), sc.file))
			require.NoError(t, store.Save(fixture(t)))

			m := models.NewProjectsManager()
			only, err := m.AddProject("only", "")
			require.NoError(t, err)
			require.NoError(t, store.Save(CollectionOf(m)))

			got, err := store.Load()
			require.NoError(t, err)
			assertSameProjects(t, []*models.Project{only}, got.Projects)
			assert.Equal(t, 1, got.NextProjectID)
		})
	}
}

func TestGateway_EmptyCollection(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sc.file)
			store := sc.open(path)

			require.NoError(t, store.Save(Collection{}))
			assert.FileExists(t, path)

			got, err := store.Load()
			require.NoError(t, err)
			assert.NotNil(t, got.Projects)
			assert.Empty(t, got.Projects)
			assert.Zero(t, got.NextProjectID)
		})
	}
}

func TestGateway_MissingFile(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", sc.file)

			got, err := sc.open(path).Load()
			require.NoError(t, err)
			assert.Empty(t, got.Projects)
			assert.NoFileExists(t, path, "loading must not create the file")
		})
	}
}

func TestGateway_EmptyFile(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sc.file)
			require.NoError(t, os.WriteFile(path, nil, 0644))

			got, err := sc.open(path).Load()
			require.NoError(t, err)
			assert.Empty(t, got.Projects)
		})
	}
}

func TestGateway_GarbageIsFormatError(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sc.file)
			require.NoError(t, os.WriteFile(path, []byte("\x00\x01 definitely: [not, a, project"), 0644))

			_, err := sc.open(path).Load()
			assert.ErrorIs(t, err, ErrFormat)
			assert.NotErrorIs(t, err, ErrIO)
		})
	}
}

func TestGateway_LoadDirectoryIsIOError(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sc.file)
			require.NoError(t, os.Mkdir(path, 0755))

			_, err := sc.open(path).Load()
			assert.ErrorIs(t, err, ErrIO)
		})
	}
}

func TestGateway_SaveFailureKeepsModel(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			blocker := filepath.Join(t.TempDir(), "blocker")
			require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
			c := fixture(t)
			before := c.Projects[0].Record()

			err := sc.open(filepath.Join(blocker, sc.file)).Save(c)
			assert.ErrorIs(t, err, ErrIO)
			assert.Equal(t, before, c.Projects[0].Record())
		})
	}
}

func TestGateway_SaveLeavesNoTempFiles(t *testing.T) {
	for _, sc := range storeCases {
		t.Run(sc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, sc.open(filepath.Join(dir, sc.file)).Save(fixture(t)))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, sc.file, entries[0].Name())
		})
	}
}

func TestGateway_PathsWithURISyntax(t *testing.T) {
	names := []string{"my#projects", "what?", "100%25", "a b&c=d"}
	for _, sc := range storeCases {
		for _, name := range names {
			t.Run(sc.name+"/"+name, func(t *testing.T) {
				dir := t.TempDir()
				path := filepath.Join(dir, name+filepath.Ext(sc.file))
				store := sc.open(path)
				want := fixture(t)

				require.NoError(t, store.Save(want))
				got, err := store.Load()
				require.NoError(t, err)
				assertSameProjects(t, want.Projects, got.Projects)

				entries, err := os.ReadDir(dir)
				require.NoError(t, err)
				require.Len(t, entries, 1, "nothing is written next to the data file")
				assert.Equal(t, filepath.Base(path), entries[0].Name())
			})
		}
	}
}

func TestDataSource_EscapesPath(t *testing.T) {
	assert.Equal(t, "file:/tmp/my%23projects%3F100%25.db?_foreign_keys=on", dataSource("/tmp/my#projects?100%.db", false))
	assert.Equal(t, "file:/tmp/p.db?_foreign_keys=on&mode=ro", dataSource("/tmp/p.db", true))
	assert.Equal(t, "file:p.db?_foreign_keys=on", dataSource("p.db", false))
}

func TestOpen_PicksBackendByExtension(t *testing.T) {
	assert.IsType(t, &YAMLStore{}, Open("a/projects.yaml"))
	assert.IsType(t, &YAMLStore{}, Open("a/projects.YML"))
	assert.IsType(t, &SQLiteStore{}, Open("a/projects.db"))
	assert.IsType(t, &SQLiteStore{}, Open("a/projects"))
	assert.Equal(t, "a/projects.db", Open("a/projects.db").Path())
}

func TestSQLiteStore_ForeignDatabaseIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = NewSQLiteStore(path).Load()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSQLiteStore_BadPriorityIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	store := NewSQLiteStore(path)
	require.NoError(t, store.Save(fixture(t)))

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec("UPDATE tasks SET priority = 'urgent'")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, err, models.ErrUnknownPriority)
}

func TestYAMLStore_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, NewYAMLStore(path).Save(fixture(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "version: 1")
	assert.Contains(t, text, "next_project_id: 5")
	assert.Contains(t, text, "priority: low")
	assert.Contains(t, text, "state: in-progress")
	assert.Contains(t, text, "assignee: alice")
	assert.NotContains(t, text, "ongoing", "derived state is never stored")
}

func TestYAMLStore_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "version: 1\nowner: me\nprojects: []\n"},
		{"wrong version", "version: 7\nprojects: []\n"},
		{"missing version", "projects: []\n"},
		{"bad priority", "version: 1\nprojects:\n  - id: 0\n    title: a\n    next_task_id: 1\n    tasks:\n      - id: 0\n        priority: urgent\n"},
		{"duplicate titles", "version: 1\nprojects:\n  - id: 0\n    title: a\n  - id: 1\n    title: a\n"},
		{"duplicate ids", "version: 1\nprojects:\n  - id: 3\n    title: a\n  - id: 3\n    title: b\n"},
		{"negative next project id", "version: 1\nnext_project_id: -1\nprojects: []\n"},
		{"task without priority", "version: 1\nprojects:\n  - id: 0\n    title: a\n    next_task_id: 1\n    tasks:\n      - id: 0\n        state: todo\n"},
		{"task without state", "version: 1\nprojects:\n  - id: 0\n    title: a\n    next_task_id: 1\n    tasks:\n      - id: 0\n        priority: low\n"},
		{"task id not below next", "version: 1\nprojects:\n  - id: 0\n    title: a\n    next_task_id: 0\n    tasks:\n      - id: 0\n        priority: high\n        state: todo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "projects.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := NewYAMLStore(path).Load()
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestSQLiteStore_BadNextProjectIDIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	store := NewSQLiteStore(path)
	require.NoError(t, store.Save(fixture(t)))

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec("UPDATE settings SET value = 'many' WHERE key = 'next_project_id'")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestYAMLStore_CounterBelowHighestID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	body := "version: 1\nnext_project_id: 1\nprojects:\n  - id: 6\n    title: a\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	got, err := NewYAMLStore(path).Load()
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)

	m := models.NewProjectsManager()
	require.NoError(t, m.Restore(got.Projects, got.NextProjectID))
	assert.Equal(t, 7, m.NextProjectID())
}

func TestYAMLStore_WhitespaceOnlyIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0644))

	got, err := NewYAMLStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, got.Projects)
}
