package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/errors"
)

func testDefinition(name string) diagram.Definition {
	return diagram.Definition{
		Name: name,
		Variables: []diagram.VariableDef{
			{Name: "a", Value: 1},
			{Name: "b", Value: 2},
		},
		Constraints: []diagram.ConstraintDef{
			{Kind: diagram.KindEquals, A: "a", B: "b"},
		},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	doc := NewDocument(testDefinition("box"))
	if doc.ID == uuid.Nil {
		t.Fatal("NewDocument should assign an ID")
	}
	if err := s.Put(ctx, doc); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "box" {
		t.Errorf("Name = %q, want %q", got.Name, "box")
	}
	if len(got.Definition.Variables) != 2 {
		t.Errorf("Definition.Variables = %d, want 2", len(got.Definition.Variables))
	}

	// The returned document is a copy; mutating it must not affect the store.
	got.Name = "mutated"
	again, _ := s.Get(ctx, doc.ID)
	if again.Name != "box" {
		t.Error("Get should return copies")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, uuid.New())
	if !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Fatalf("err = %v, want DIAGRAM_NOT_FOUND", err)
	}
}

func TestMemoryStorePutReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := NewDocument(testDefinition("box"))
	if err := s.Put(ctx, doc); err != nil {
		t.Fatal(err)
	}

	doc.Solution = map[string]float64{"a": 1, "b": 1}
	doc.UpdatedAt = time.Now().UTC()
	if err := s.Put(ctx, doc); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Solution["b"] != 1 {
		t.Errorf("Solution = %v, want updated values", got.Solution)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("List = %d docs, want 1 after replace", len(docs))
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	older := NewDocument(testDefinition("older"))
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := NewDocument(testDefinition("newer"))

	if err := s.Put(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, newer); err != nil {
		t.Fatal(err)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("List = %d docs, want 2", len(docs))
	}
	if docs[0].Name != "newer" || docs[1].Name != "older" {
		t.Errorf("List order = [%s, %s], want newest first", docs[0].Name, docs[1].Name)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := NewDocument(testDefinition("box"))
	if err := s.Put(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, doc.ID); !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Fatalf("err = %v, want DIAGRAM_NOT_FOUND after delete", err)
	}

	if err := s.Delete(ctx, doc.ID); !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Fatalf("double delete err = %v, want DIAGRAM_NOT_FOUND", err)
	}
}
