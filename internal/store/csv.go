// Package store implements the TabularStore over CSV statement exports.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-analyser/internal/logger"
	"github.com/dvloznov/statement-analyser/internal/pipeline"
)

// Required input columns, matched by header name so column order is free.
// These names mirror the bank's export format.
const (
	colSeq        = "S No."
	colDate       = "Transaction Date"
	colRemark     = "Transaction Remarks"
	colWithdrawal = "Withdrawal Amount(INR)"
	colDeposit    = "Deposit Amount(INR)"
	colBalance    = "Balance(INR)"
)

// Columns the analysis adds to the output.
const (
	colCleaned     = "Cleaned Remark"
	colNotes       = "Notes / Doubts"
	colCategory    = "Category"
	colSubcategory = "Subcategory"
	colConfidence  = "Confidence"
)

var requiredColumns = []string{colSeq, colDate, colRemark, colWithdrawal, colDeposit, colBalance}

// dateFormats are tried in order; Indian bank exports are day-first.
var dateFormats = []string{"02/01/2006", "02-01-2006", "2006-01-02", "02 Jan 2006"}

// CSVStore reads and writes statement CSV files.
type CSVStore struct{}

func NewCSVStore() *CSVStore {
	return &CSVStore{}
}

// Load reads the statement. Structural problems (unreadable file, missing
// required columns) are load errors and fatal for the run. Bad cell values
// are not: an unparseable amount loads as nil and is left for row validation
// to report, so one bad row cannot sink the file.
func (s *CSVStore) Load(ctx context.Context, path string) ([]pipeline.RawTransaction, []string, error) {
	log := logger.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("store.Load: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("store.Load: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("store.Load: missing required columns: %s", strings.Join(missing, ", "))
	}

	// Extra columns are preserved through to the output.
	var extraHeaders []string
	var extraIdx []int
	for i, name := range header {
		if !isRequired(strings.TrimSpace(name)) {
			extraHeaders = append(extraHeaders, name)
			extraIdx = append(extraIdx, i)
		}
	}
	if len(extraHeaders) > 0 {
		log.Info().Strs("columns", extraHeaders).Msg("extra input columns will be preserved")
	}

	var rows []pipeline.RawTransaction
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("store.Load: line %d: %w", line, err)
		}

		tx := pipeline.RawTransaction{
			Seq:        parseSeq(rec[col[colSeq]], line-1),
			DateRaw:    strings.TrimSpace(rec[col[colDate]]),
			Remark:     strings.TrimSpace(rec[col[colRemark]]),
			Withdrawal: parseAmount(rec[col[colWithdrawal]]),
			Deposit:    parseAmount(rec[col[colDeposit]]),
		}
		tx.Date = parseDate(tx.DateRaw)
		if bal := parseAmount(rec[col[colBalance]]); bal != nil {
			tx.Balance = *bal
		}
		for _, i := range extraIdx {
			tx.Extras = append(tx.Extras, rec[i])
		}
		rows = append(rows, tx)
	}

	return rows, extraHeaders, nil
}

// Save writes the interpreted statement: the required columns, any preserved
// extras, then the analysis columns. Failed rows carry the error marker in
// the cleaned-remark and category columns and the reason under notes.
func (s *CSVStore) Save(ctx context.Context, path string, extraHeaders []string, rows []*pipeline.InterpretedTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{}, requiredColumns...)
	header = append(header, extraHeaders...)
	header = append(header, colCleaned, colNotes, colCategory, colSubcategory, colConfidence)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("store.Save: write header: %w", err)
	}

	for _, it := range rows {
		rec := []string{
			strconv.Itoa(it.Seq),
			it.DateRaw,
			it.Remark,
			formatAmount(it.Withdrawal),
			formatAmount(it.Deposit),
			it.Balance.String(),
		}
		rec = append(rec, it.Extras...)

		if it.Failed {
			rec = append(rec, pipeline.ErrorMarker, it.FailureReason, pipeline.ErrorMarker, "", "")
		} else {
			rec = append(rec, it.CleanedRemark, it.Notes, it.Category, it.Subcategory, string(it.Confidence))
		}

		if err := w.Write(rec); err != nil {
			return fmt.Errorf("store.Save: row %d: %w", it.Seq, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store.Save: flush: %w", err)
	}
	return nil
}

// LoadInterpreted reads back a previously analysed CSV, for chatting over a
// processed statement without re-running the model stages.
func (s *CSVStore) LoadInterpreted(ctx context.Context, path string) ([]*pipeline.InterpretedTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store.LoadInterpreted: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("store.LoadInterpreted: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range append(append([]string{}, requiredColumns...), colCleaned, colCategory, colConfidence) {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("store.LoadInterpreted: %q is not an analysed statement: missing column %q", path, name)
		}
	}

	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var rows []*pipeline.InterpretedTransaction
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("store.LoadInterpreted: line %d: %w", line, err)
		}

		it := &pipeline.InterpretedTransaction{
			RawTransaction: pipeline.RawTransaction{
				Seq:        parseSeq(get(rec, colSeq), line-1),
				DateRaw:    get(rec, colDate),
				Remark:     get(rec, colRemark),
				Withdrawal: parseAmount(get(rec, colWithdrawal)),
				Deposit:    parseAmount(get(rec, colDeposit)),
			},
			CleanedRemark: get(rec, colCleaned),
			Notes:         get(rec, colNotes),
			Category:      get(rec, colCategory),
			Subcategory:   get(rec, colSubcategory),
			Confidence:    pipeline.ParseConfidence(get(rec, colConfidence)),
		}
		it.Date = parseDate(it.DateRaw)
		if it.CleanedRemark == pipeline.ErrorMarker || it.Category == pipeline.ErrorMarker {
			it.Fail(it.Notes)
		}
		rows = append(rows, it)
	}

	return rows, nil
}

func isRequired(name string) bool {
	for _, r := range requiredColumns {
		if r == name {
			return true
		}
	}
	return false
}

func parseSeq(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// parseAmount returns nil for empty or unparseable cells; validation decides
// whether that is a problem. Thousands separators are tolerated.
func parseAmount(s string) *decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseDate(s string) time.Time {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
