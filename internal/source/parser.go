// Package source discovers and parses expense files for bulk import.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"

	"golang.org/x/sync/errgroup"
)

// LineError reports one rejected line of an import file.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

// ParseResult holds the output of parsing a single file.
type ParseResult struct {
	File     DiscoveredFile
	Expenses []model.ExpenseInput
	Rejected []LineError
	Err      error
}

// ParseFile reads one expense file. Lines that fail to decode or validate
// are collected in Rejected; only I/O failures set Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	switch df.Format {
	case FormatCSV:
		return parseCSV(df, f)
	default:
		return parseJSONL(df, f)
	}
}

// parseJSONL decodes one RawExpense per line. Lines sharing a ref are
// deduplicated, keeping the last one at the position of the first.
func parseJSONL(df DiscoveredFile, r io.Reader) ParseResult {
	res := ParseResult{File: df}
	byRef := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var raw RawExpense
		if err := json.Unmarshal(line, &raw); err != nil {
			res.Rejected = append(res.Rejected, LineError{df.Path, lineNo, fmt.Errorf("invalid JSON: %w", err)})
			continue
		}
		in, err := raw.Input()
		if err != nil {
			res.Rejected = append(res.Rejected, LineError{df.Path, lineNo, err})
			continue
		}

		if raw.Ref != "" {
			if idx, seen := byRef[raw.Ref]; seen {
				res.Expenses[idx] = in
				continue
			}
			byRef[raw.Ref] = len(res.Expenses)
		}
		res.Expenses = append(res.Expenses, in)
	}
	res.Err = scanner.Err()
	return res
}

// parseCSV expects a header row naming at least date, category and amount.
func parseCSV(df DiscoveredFile, r io.Reader) ParseResult {
	res := ParseResult{File: df}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("reading header: %w", err)
		return res
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"date", "category", "amount"} {
		if _, ok := cols[want]; !ok {
			res.Err = fmt.Errorf("missing %q column", want)
			return res
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	lineNo := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			res.Rejected = append(res.Rejected, LineError{df.Path, lineNo, err})
			continue
		}
		raw := RawExpense{
			Date:        field(rec, "date"),
			Category:    field(rec, "category"),
			Amount:      field(rec, "amount"),
			Description: field(rec, "description"),
		}
		in, err := raw.Input()
		if err != nil {
			res.Rejected = append(res.Rejected, LineError{df.Path, lineNo, err})
			continue
		}
		res.Expenses = append(res.Expenses, in)
	}
	return res
}

// Input normalizes and validates a raw line.
func (r RawExpense) Input() (model.ExpenseInput, error) {
	amount, err := cli.PlainNumbers.Parse(r.Amount)
	if err != nil {
		return model.ExpenseInput{}, err
	}
	in := model.ExpenseInput{
		Date:        strings.TrimSpace(r.Date),
		Category:    strings.ToUpper(strings.TrimSpace(r.Category)),
		Amount:      amount,
		Description: strings.TrimSpace(r.Description),
	}
	return in, in.Validate()
}

// ParseAll parses files with a bounded worker pool. Results keep the order
// of files. It stops early only when ctx is cancelled.
func ParseAll(ctx context.Context, files []DiscoveredFile) ([]ParseResult, error) {
	results := make([]ParseResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.GOMAXPROCS(0), 1))
	for i, df := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ParseFile(df)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
