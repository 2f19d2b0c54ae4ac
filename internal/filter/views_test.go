package filter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tempStore(t *testing.T) *ViewStore {
	t.Helper()
	return NewViewStore(filepath.Join(t.TempDir(), "views.yaml"))
}

func TestViewStoreMissingFileReadsEmpty(t *testing.T) {
	store := tempStore(t)
	views, err := store.List()
	assert.NoError(t, err)
	assert.Empty(t, views)
}

func TestViewStoreSaveAndList(t *testing.T) {
	store := tempStore(t)

	rules := []Rule{{ID: "r1", Field: "status", Operator: OpEquals, Value: "New"}}
	saved, err := store.Save("hot leads", rules)
	assert.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "hot leads", saved.Name)

	views, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, saved.ID, views[0].ID)
	assert.Equal(t, rules, views[0].Rules)
}

func TestViewStoreFindByIDOrName(t *testing.T) {
	store := tempStore(t)
	saved, err := store.Save("converted", []Rule{{ID: "r1", Field: "status", Operator: OpEquals, Value: "Converted"}})
	assert.NoError(t, err)

	byID, err := store.Find(saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, saved.Name, byID.Name)

	byName, err := store.Find("converted")
	assert.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)

	_, err = store.Find("missing")
	assert.Error(t, err)
}

func TestViewStoreDelete(t *testing.T) {
	store := tempStore(t)
	first, err := store.Save("first", nil)
	assert.NoError(t, err)
	_, err = store.Save("second", nil)
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(first.ID))

	views, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "second", views[0].Name)

	assert.Error(t, store.Delete(first.ID))
}
