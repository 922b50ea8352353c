// Package export writes aggregated P&L figures as CSV and reads row values
// back from CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/pnl-forecast/internal/aggregation"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/ratios"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ','

// MonthlyRow is one series: a category id or type and its twelve months.
type MonthlyRow struct {
	Key   string `csv:"key"`
	Jan   string `csv:"jan"`
	Feb   string `csv:"feb"`
	Mar   string `csv:"mar"`
	Apr   string `csv:"apr"`
	May   string `csv:"may"`
	Jun   string `csv:"jun"`
	Jul   string `csv:"jul"`
	Aug   string `csv:"aug"`
	Sep   string `csv:"sep"`
	Oct   string `csv:"oct"`
	Nov   string `csv:"nov"`
	Dec   string `csv:"dec"`
	Total string `csv:"total"`
}

// TotalRow is the yearly total of one category.
type TotalRow struct {
	CategoryID string `csv:"category_id"`
	Type       string `csv:"type"`
	Name       string `csv:"name"`
	Total      string `csv:"total"`
}

// RatioRow is one named ratio, a percentage.
type RatioRow struct {
	Name  string `csv:"ratio"`
	Value string `csv:"percent"`
}

// ValueRow is one row value to import.
type ValueRow struct {
	RowID string  `csv:"row_id"`
	Year  int     `csv:"year"`
	Month int     `csv:"month"`
	Value float64 `csv:"value"`
}

// Exporter renders aggregation results with a fixed delimiter.
type Exporter struct {
	delimiter rune
	logger    logging.Logger
}

// NewExporter creates an exporter. A zero delimiter means DefaultDelimiter.
func NewExporter(delimiter rune, logger logging.Logger) *Exporter {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &Exporter{delimiter: delimiter, logger: logging.OrDiscard(logger)}
}

// Delimiter returns the configured field separator.
func (e *Exporter) Delimiter() rune { return e.delimiter }

func formatAmount(v float64) string {
	return models.FormatAmount(v, 2)
}

func monthlyRow(key string, s aggregation.Series) MonthlyRow {
	f := func(i int) string { return formatAmount(s[i]) }
	return MonthlyRow{
		Key: key,
		Jan: f(0), Feb: f(1), Mar: f(2), Apr: f(3), May: f(4), Jun: f(5),
		Jul: f(6), Aug: f(7), Sep: f(8), Oct: f(9), Nov: f(10), Dec: f(11),
		Total: formatAmount(s.Total()),
	}
}

// MonthlyRows returns one row per category in tree order, keyed by id.
// A derived operating_profit row is appended when no category has that
// type.
func MonthlyRows(svc *aggregation.Service, year int) []MonthlyRow {
	series := svc.MonthlySeries(year)
	rows := make([]MonthlyRow, 0, len(svc.Categories())+1)
	hasOperatingProfit := false
	for _, cat := range svc.Categories() {
		if cat.Type == models.CategoryTypeOperatingProfit {
			hasOperatingProfit = true
		}
		rows = append(rows, monthlyRow(cat.ID, series[cat.ID]))
	}
	if !hasOperatingProfit {
		key := string(models.CategoryTypeOperatingProfit)
		rows = append(rows, monthlyRow(key, series[key]))
	}
	return rows
}

// TotalRows returns the yearly total of every category in tree order.
func TotalRows(svc *aggregation.Service, year int) []TotalRow {
	totals := svc.YearlyTotals(year)
	rows := make([]TotalRow, 0, len(totals))
	for _, cat := range svc.Categories() {
		rows = append(rows, TotalRow{
			CategoryID: cat.ID,
			Type:       string(cat.Type),
			Name:       cat.Name,
			Total:      formatAmount(totals[cat.ID]),
		})
	}
	return rows
}

// RatioRows lists the ratios in a fixed order.
func RatioRows(r ratios.Ratios) []RatioRow {
	values := r.AsMap()
	rows := make([]RatioRow, 0, len(ratioOrder))
	for _, name := range ratioOrder {
		rows = append(rows, RatioRow{Name: name, Value: formatAmount(values[name])})
	}
	return rows
}

var ratioOrder = []string{
	ratios.GrossMargin,
	ratios.OperatingMargin,
	ratios.NetMargin,
	ratios.ExpenseRatio,
	ratios.EffectiveTaxRate,
	ratios.TargetIncomeAchievement,
}

// WriteRatios writes ratio rows with a header line.
func (e *Exporter) WriteRatios(w io.Writer, rows []RatioRow) error {
	return writeCSV(w, e.delimiter, rows)
}

// WriteMonthly writes monthly rows with a header line.
func (e *Exporter) WriteMonthly(w io.Writer, rows []MonthlyRow) error {
	return writeCSV(w, e.delimiter, rows)
}

// WriteTotals writes total rows with a header line.
func (e *Exporter) WriteTotals(w io.Writer, rows []TotalRow) error {
	return writeCSV(w, e.delimiter, rows)
}

// ReadValues parses row values from r.
func (e *Exporter) ReadValues(r io.Reader) ([]ValueRow, error) {
	return ReadCSV[ValueRow](r, e.delimiter)
}

func writeCSV[T any](w io.Writer, delimiter rune, rows []T) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ReadCSV reads CSV data with a header line into a slice of structs.
func ReadCSV[T any](r io.Reader, delimiter rune) ([]T, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.TrimLeadingSpace = true

	var rows []T
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// ToFile runs write against a newly created file at path, creating parent
// directories as needed.
func (e *Exporter) ToFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := write(file); err != nil {
		return err
	}
	e.logger.Info("Wrote CSV file", logging.F(logging.FieldOutputFile, path))
	return nil
}
