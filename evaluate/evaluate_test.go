package evaluate

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/dirschema/adapter"
	"github.com/fulmenhq/dirschema/meta"
	"github.com/fulmenhq/dirschema/ruleset"
)

func mustWriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func mustParse(t *testing.T, doc string) ruleset.DSRule {
	t.Helper()
	r, err := ruleset.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func newRealDirEvaluator(t *testing.T, base string) *Evaluator {
	t.Helper()
	rd, err := adapter.NewRealDir(base)
	if err != nil {
		t.Fatalf("NewRealDir: %v", err)
	}
	return NewEvaluator(rd, meta.Default(), Resolver{})
}

// Scenario 1: trivial success.
func TestTrivialSuccess(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{"a/b.txt": "x"})
	e := newRealDirEvaluator(t, dir)
	result, err := e.Validate(context.Background(), mustParse(t, "{}"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected an empty result, got %v", result)
	}
}

// Scenario 2: type contradiction via anyOf/next.
func TestTypeContradictionUnderAnyOfNext(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{})
	e := newRealDirEvaluator(t, dir)
	doc := `
anyOf:
  - match: ""
    next:
      type: file
`
	result, err := e.Validate(context.Background(), mustParse(t, doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	entries, ok := result[""]
	if !ok {
		t.Fatalf("expected an error for the root path, got %v", result)
	}
	entry, ok := entries["/anyOf/0/next/type"]
	if !ok {
		t.Fatalf("expected an entry at /anyOf/0/next/type, got %v", entries)
	}
	if entry.Err != "Entity does not have expected type: 'file'" {
		t.Fatalf("got message %v", entry.Err)
	}
}

// Scenario 3: metadata validation via validMeta.
func TestMetadataValidationSuccess(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{"_meta.json": `{"author": "Jane"}`})
	e := newRealDirEvaluator(t, dir)
	doc := `
match: ""
validMeta:
  type: object
  required: [author]
`
	result, err := e.Validate(context.Background(), mustParse(t, doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected success, got %v", result)
	}
}

func TestMetadataValidationMissingRequiredField(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{"_meta.json": `{}`})
	e := newRealDirEvaluator(t, dir)
	doc := `
match: ""
validMeta:
  type: object
  required: [author]
`
	result, err := e.Validate(context.Background(), mustParse(t, doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	entries, ok := result[""]
	if !ok {
		t.Fatalf("expected an error, got %v", result)
	}
	found := false
	for _, entry := range entries {
		if _, isMap := entry.Err.(map[string][]string); isMap {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a JSON-Schema error map under validMeta, got %v", entries)
	}
}

// A present entity with no metadata sidecar must fail with "could not
// load" under validMeta, not "path does not exist" (the existence check
// is against the original entity path, not the sidecar path).
func TestMetadataValidationMissingSidecarFile(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{"present.txt": "x"})
	e := newRealDirEvaluator(t, dir)
	doc := `
match: "present.txt"
validMeta:
  type: object
`
	result, err := e.Validate(context.Background(), mustParse(t, doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	entries, ok := result["present.txt"]
	if !ok {
		t.Fatalf("expected an error for present.txt, got %v", result)
	}
	entry, ok := entries["/validMeta"]
	if !ok {
		t.Fatalf("expected an entry at /validMeta, got %v", entries)
	}
	if entry.Err != "could not load" {
		t.Fatalf("got message %v, want %q", entry.Err, "could not load")
	}
}

// A nested node that sets only `rewrite` (no `match` of its own) must
// rewrite against the inherited matchPat, not silently reset to the
// default whole-slice pattern.
func TestMatchPatternInheritedAcrossNext(t *testing.T) {
	dir := mustWriteTree(t, map[string]string{"prefix_target": "x"})
	e := newRealDirEvaluator(t, dir)
	doc := `
match: "prefix_(.*)"
next:
  rewrite: "renamed_$1"
  next:
    type: false
`
	result, err := e.Validate(context.Background(), mustParse(t, doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// "prefix_target" rewritten via the inherited "prefix_(.*)" pattern to
	// "renamed_target", which does not exist, satisfying `type: false`.
	if entries, ok := result["prefix_target"]; ok {
		t.Fatalf("expected success (inherited pattern rewrites to a missing path), got %v", entries)
	}
}

const mutexSchema = `
if:
  allOf:
    - not:
        matchStart: -1
        match: "a_.*"
    - not:
        matchStart: -1
        match: "b_.*"
then:
  if:
    type: file
  then:
    oneOf:
      - matchStart: -1
        match: "(.*)"
        rewrite: "a_$1"
        next:
          type: file
      - matchStart: -1
        match: "(.*)"
        rewrite: "b_$1"
        next:
          type: file
`

// Scenario 4: the a_X/b_X mutex progression.
func TestMutexProgression(t *testing.T) {
	rule := mustParse(t, mutexSchema)

	step := func(t *testing.T, files map[string]string, dirs []string) Result {
		dir := mustWriteTree(t, files)
		for _, d := range dirs {
			if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0o755); err != nil {
				t.Fatal(err)
			}
		}
		e := newRealDirEvaluator(t, dir)
		result, err := e.Validate(context.Background(), rule)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		return result
	}

	t.Run("neither exists fails", func(t *testing.T) {
		result := step(t, map[string]string{"blub/bar": "x"}, []string{"blub/foo", "blub/a_qux"})
		if _, ok := result["blub/bar"]; !ok {
			t.Fatalf("expected an error on blub/bar, got %v", result)
		}
	})

	t.Run("a_bar as directory still fails", func(t *testing.T) {
		result := step(t, map[string]string{"blub/bar": "x"}, []string{"blub/foo", "blub/a_qux", "blub/a_bar"})
		if _, ok := result["blub/bar"]; !ok {
			t.Fatalf("expected an error on blub/bar, got %v", result)
		}
	})

	t.Run("a_bar as file passes", func(t *testing.T) {
		result := step(t, map[string]string{"blub/bar": "x", "blub/a_bar": "y"}, []string{"blub/foo", "blub/a_qux"})
		if _, ok := result["blub/bar"]; ok {
			t.Fatalf("expected no error on blub/bar, got %v", result["blub/bar"])
		}
	})

	t.Run("both a_bar and b_bar fails", func(t *testing.T) {
		result := step(t, map[string]string{"blub/bar": "x", "blub/a_bar": "y", "blub/b_bar": "z"}, []string{"blub/foo", "blub/a_qux"})
		if _, ok := result["blub/bar"]; !ok {
			t.Fatalf("expected an error on blub/bar, got %v", result)
		}
	})

	t.Run("only b_bar passes", func(t *testing.T) {
		result := step(t, map[string]string{"blub/bar": "x", "blub/b_bar": "z"}, []string{"blub/foo", "blub/a_qux"})
		if _, ok := result["blub/bar"]; ok {
			t.Fatalf("expected no error on blub/bar, got %v", result["blub/bar"])
		}
	})
}

// Scenario 6: zip parity with the mutex progression's final passing layout.
func TestMutexProgressionZipParity(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, d := range []string{"blub", "blub/foo", "blub/a_qux"} {
		if _, err := zw.Create(d + "/"); err != nil {
			t.Fatal(err)
		}
	}
	w, err := zw.Create("blub/bar")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	w2, err := zw.Create("blub/b_bar")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w2.Write([]byte("z")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	zd, err := adapter.NewZipDir(archivePath)
	if err != nil {
		t.Fatalf("NewZipDir: %v", err)
	}
	defer zd.Close()

	e := NewEvaluator(zd, meta.Default(), Resolver{})
	result, err := e.Validate(context.Background(), mustParse(t, mutexSchema))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, ok := result["blub/bar"]; ok {
		t.Fatalf("expected blub/bar to pass (only b_bar exists), got %v", result["blub/bar"])
	}
}
