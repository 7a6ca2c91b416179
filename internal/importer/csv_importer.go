// Package importer bulk-registers participants from CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
)

// Registrar registers a single participant. services.ParticipantService satisfies it.
type Registrar interface {
	Register(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationResult, error)
}

// Result summarizes one import run
type Result struct {
	TotalRows int      `json:"totalRows"`
	Created   int      `json:"created"`
	Existing  int      `json:"existing"`
	Errors    []string `json:"errors"`
}

// column aliases, matched case-insensitively after trimming
var (
	nameColumns        = []string{"name", "full name", "participant"}
	countryCodeColumns = []string{"country_code", "country code", "countrycode", "dial code"}
	phoneColumns       = []string{"whatsapp", "phone", "phone number", "mobile", "whatsapp number"}
	ageColumns         = []string{"age"}
	maritalColumns     = []string{"marital_status", "marital status", "maritalstatus", "status"}
	reasonColumns      = []string{"attraction_reason", "attraction reason", "reason", "why"}
)

// CSVImporter registers participants read from CSV through the normal registration path
type CSVImporter struct {
	registrar Registrar
	logger    *slog.Logger
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(registrar Registrar, logger *slog.Logger) *CSVImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVImporter{registrar: registrar, logger: logger}
}

// ImportFile imports participants from the CSV file at path
func (i *CSVImporter) ImportFile(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return i.Import(ctx, file)
}

// Import reads a header row followed by participant rows from r.
// Row-level problems are reported in Result.Errors and do not stop the run.
// Storage failures abort the run.
func (i *CSVImporter) Import(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameIdx := findColumnIndex(header, nameColumns)
	countryIdx := findColumnIndex(header, countryCodeColumns)
	phoneIdx := findColumnIndex(header, phoneColumns)
	ageIdx := findColumnIndex(header, ageColumns)
	maritalIdx := findColumnIndex(header, maritalColumns)
	reasonIdx := findColumnIndex(header, reasonColumns)

	var missing []string
	for column, idx := range map[string]int{
		"name":           nameIdx,
		"country_code":   countryIdx,
		"whatsapp":       phoneIdx,
		"age":            ageIdx,
		"marital_status": maritalIdx,
	} {
		if idx == -1 {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns not found in CSV: %s", strings.Join(sortedCopy(missing), ", "))
	}

	result := &Result{Errors: []string{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		rowNum := result.TotalRows
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		age, err := strconv.Atoi(cell(row, ageIdx))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid age %q", rowNum, cell(row, ageIdx)))
			continue
		}

		req := &models.RegistrationRequest{
			Name:             cell(row, nameIdx),
			CountryCode:      cell(row, countryIdx),
			Phone:            cell(row, phoneIdx),
			Age:              age,
			MaritalStatus:    cell(row, maritalIdx),
			AttractionReason: cell(row, reasonIdx),
		}

		registered, err := i.registrar.Register(ctx, req)
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, verr))
				continue
			}
			return result, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if registered.AlreadyRegistered {
			result.Existing++
		} else {
			result.Created++
		}
	}

	i.logger.InfoContext(ctx, "CSV import finished",
		"totalRows", result.TotalRows,
		"created", result.Created,
		"existing", result.Existing,
		"errors", len(result.Errors),
	)
	return result, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range possibleNames {
			if name == h {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	slices.Sort(out)
	return out
}
