package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a temp file with the given lines and returns a DiscoveredFile for it.
func writeFile(t *testing.T, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, ok := formatFor(path)
	if !ok {
		t.Fatalf("unsupported test file %s", name)
	}
	return DiscoveredFile{Path: path, Format: f}
}

func TestParseFile_JSONL(t *testing.T) {
	df := writeFile(t, "june.jsonl",
		`{"date":"2024-06-01","category":"food","amount":"12.50","description":" lunch "}`,
		``,
		`# comment`,
		`{"date":"2024-06-02","category":"TRANSPORT","amount":"1,200"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Rejected) != 0 {
		t.Fatalf("Rejected = %v, want none", result.Rejected)
	}
	if len(result.Expenses) != 2 {
		t.Fatalf("Expenses = %d, want 2", len(result.Expenses))
	}
	first := result.Expenses[0]
	if first.Category != "FOOD" || first.Description != "lunch" || first.Amount.String() != "12.5" {
		t.Errorf("first = %+v", first)
	}
	if got := result.Expenses[1].Amount.String(); got != "1200" {
		t.Errorf("second amount = %s, want 1200", got)
	}
}

func TestParseFile_RefDedup(t *testing.T) {
	// Two lines with the same ref: the second wins, at the first one's position.
	df := writeFile(t, "dedup.jsonl",
		`{"ref":"a","date":"2024-06-01","category":"FOOD","amount":"10"}`,
		`{"date":"2024-06-01","category":"HEALTH","amount":"5"}`,
		`{"ref":"a","date":"2024-06-01","category":"FOOD","amount":"11"}`,
	)

	result := ParseFile(df)
	if len(result.Expenses) != 2 {
		t.Fatalf("Expenses = %d, want 2 (dedup)", len(result.Expenses))
	}
	if got := result.Expenses[0].Amount.String(); got != "11" {
		t.Errorf("deduped amount = %s, want 11", got)
	}
}

func TestParseFile_RejectsBadLines(t *testing.T) {
	df := writeFile(t, "bad.jsonl",
		`{"date":"2024-06-01","category":"FOOD","amount":"10"}`,
		`not json`,
		`{"date":"2024-06-01","category":"PETS","amount":"10"}`,
		`{"date":"2024-06-01","category":"FOOD","amount":"-4"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 1 {
		t.Errorf("Expenses = %d, want 1", len(result.Expenses))
	}
	if len(result.Rejected) != 3 {
		t.Fatalf("Rejected = %d, want 3", len(result.Rejected))
	}
	if result.Rejected[0].Line != 2 {
		t.Errorf("first rejected line = %d, want 2", result.Rejected[0].Line)
	}
}

func TestParseFile_CSV(t *testing.T) {
	df := writeFile(t, "june.csv",
		`Date, Amount, Category, Description`,
		`2024-06-01, 25.00, food, "groceries, weekly"`,
		`2024-06-03, abc, food,`,
		`2024-06-04, 3, other`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 2 {
		t.Fatalf("Expenses = %d, want 2", len(result.Expenses))
	}
	if got := result.Expenses[0].Description; got != "groceries, weekly" {
		t.Errorf("Description = %q", got)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Line != 3 {
		t.Errorf("Rejected = %v, want line 3", result.Rejected)
	}
}

func TestParseFile_CSVMissingColumn(t *testing.T) {
	df := writeFile(t, "bad.csv", `date,amount`, `2024-06-01,3`)
	if result := ParseFile(df); result.Err == nil {
		t.Fatal("expected an error for a missing category column")
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	result := ParseFile(DiscoveredFile{Path: "/nonexistent/file.jsonl", Format: FormatJSONL})
	if result.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.jsonl", "notes.txt", ".hidden/c.csv", "sub/d.ndjson"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f.Path)
		got = append(got, rel+":"+string(f.Format))
	}
	want := "a.jsonl:jsonl b.csv:csv sub/d.ndjson:jsonl"
	if strings.Join(got, " ") != want {
		t.Errorf("Scan = %v, want %s", got, want)
	}

	if _, err := Scan(filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("expected error for unsupported single file")
	}
}

func TestParseAllKeepsOrder(t *testing.T) {
	var files []DiscoveredFile
	for i := 0; i < 8; i++ {
		files = append(files, writeFile(t, "f.jsonl",
			`{"date":"2024-06-01","category":"FOOD","amount":"`+strings.Repeat("1", i+1)+`"}`))
	}

	results, err := ParseAll(context.Background(), files)
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	for i, r := range results {
		if r.File.Path != files[i].Path {
			t.Fatalf("result %d out of order", i)
		}
		if got, want := r.Expenses[0].Amount.String(), strings.Repeat("1", i+1); got != want {
			t.Errorf("result %d amount = %s, want %s", i, got, want)
		}
	}
}

func TestParseAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files := []DiscoveredFile{writeFile(t, "x.jsonl", `{}`)}
	if _, err := ParseAll(ctx, files); err == nil {
		t.Fatal("expected context error")
	}
}
