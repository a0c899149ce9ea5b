package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"stellar-hq/callisto/pkg/config"
	"stellar-hq/callisto/pkg/cpl/ast"
	"stellar-hq/callisto/pkg/policy/store"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(config.ArchiveConfig{Path: filepath.Join(t.TempDir(), "archive.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func testSet(t *testing.T) *store.PolicySet {
	t.Helper()
	s := store.New()

	static, err := ast.NewStaticPolicy("allow-admin", ast.EffectPermit,
		ast.EqScope(ast.NewEntityUID("User", "admin")),
		ast.AnyAction(),
		ast.AnyScope(),
		ast.BoolExpr(true))
	if err != nil {
		t.Fatalf("NewStaticPolicy() error = %v", err)
	}
	if err := s.AddStatic(static); err != nil {
		t.Fatalf("AddStatic() error = %v", err)
	}

	tmpl := ast.NewTemplate("viewer", ast.EffectPermit,
		ast.EqSlotScope(),
		ast.AnyAction(),
		ast.InScope(ast.NewEntityUID("Folder", "docs")),
		ast.BoolExpr(true))
	if err := s.AddTemplate(tmpl); err != nil {
		t.Fatalf("AddTemplate() error = %v", err)
	}
	if _, err := s.Link("viewer", "viewer-alice", ast.SlotEnv{
		ast.SlotPrincipal: ast.NewEntityUID("User", "alice"),
	}); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	set := testSet(t)

	id, err := a.Save(ctx, "gen-1", set)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if id == "" {
		t.Fatal("Save() returned empty id")
	}

	loaded, err := a.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.Equal(set) {
		t.Errorf("loaded set differs from saved set:\ngot:\n%v\nwant:\n%v", loaded, set)
	}
}

func TestList(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	set := testSet(t)

	first, err := a.Save(ctx, "gen-1", set)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := a.Save(ctx, "gen-2", set)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snapshots, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("List() returned %d snapshots, want 2", len(snapshots))
	}

	ids := map[string]bool{snapshots[0].ID: true, snapshots[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Errorf("List() ids = %v, want %q and %q", ids, first, second)
	}
	for _, s := range snapshots {
		if s.Templates != 2 {
			t.Errorf("snapshot %s templates = %d, want 2", s.ID, s.Templates)
		}
		if s.Links != 2 {
			t.Errorf("snapshot %s links = %d, want 2", s.ID, s.Links)
		}
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Load(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("Load() of missing snapshot succeeded, want error")
	}
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Load() error = %T, want *StorageError", err)
	}
	if serr.Op != "load" {
		t.Errorf("StorageError.Op = %q, want %q", serr.Op, "load")
	}
}
