package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/refcart/internal/enrich"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot() Snapshot {
	return Snapshot{
		Seeds:  []string{"10.1/s1", "10.1/s2"},
		Format: "RIS",
		Items: []enrich.Item{
			{ID: 0, DOI: "10.1/a", Label: "A", Citation: "cite-a", Sources: []string{"10.1/s1"}},
			{ID: 1, DOI: "10.1/b", Label: "B", Citation: "cite-b", Sources: []string{"10.1/s1", "10.1/s2"}},
		},
		Selected: []int{1},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	want := testSnapshot()
	if err := db.Save(want); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadEmptyDB(t *testing.T) {
	db := openTestDB(t)

	snap, err := db.Load()
	if err != nil {
		t.Fatalf("loading empty db: %v", err)
	}
	if len(snap.Items) != 0 || len(snap.Seeds) != 0 || snap.Format != "" {
		t.Errorf("empty db snapshot = %+v", snap)
	}
}

func TestSaveOverwritesPriorBatch(t *testing.T) {
	db := openTestDB(t)

	if err := db.Save(testSnapshot()); err != nil {
		t.Fatalf("saving first batch: %v", err)
	}

	second := Snapshot{
		Seeds:  []string{"10.1/s3"},
		Format: "BibTeX",
		Items: []enrich.Item{
			{ID: 0, DOI: "10.1/z", Label: "Z", Citation: "cite-z", Sources: []string{"10.1/s3"}},
		},
	}
	if err := db.Save(second); err != nil {
		t.Fatalf("saving second batch: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("second batch did not fully replace the first:\n got %+v\nwant %+v", got, second)
	}
	if len(got.Selected) != 0 {
		t.Errorf("stale selection leaked into the new batch: %v", got.Selected)
	}
}

func TestReplaceSelection(t *testing.T) {
	db := openTestDB(t)

	if err := db.Save(testSnapshot()); err != nil {
		t.Fatalf("saving: %v", err)
	}

	if err := db.ReplaceSelection([]int{0}); err != nil {
		t.Fatalf("replacing selection: %v", err)
	}

	snap, err := db.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !reflect.DeepEqual(snap.Selected, []int{0}) {
		t.Errorf("selected = %v, want [0]", snap.Selected)
	}

	if err := db.ReplaceSelection(nil); err != nil {
		t.Fatalf("clearing selection: %v", err)
	}
	snap, err = db.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if len(snap.Selected) != 0 {
		t.Errorf("selected = %v, want empty", snap.Selected)
	}
}
