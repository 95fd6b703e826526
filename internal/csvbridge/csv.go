// Package csvbridge round-trips cached datasets through CSV: typed
// export with a fixed header per domain, and import with numeric
// coercion plus minimal schema validation.
package csvbridge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"findoss/internal/models"
)

// ErrEmptyData reports an empty or header-only CSV upload.
var ErrEmptyData = errors.New("csvbridge: no valid data found in CSV")

// SchemaError reports a CSV whose records lack the column that
// identifies which dataset the upload belongs to.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("csvbridge: CSV file must contain a %q column", e.Column)
}

var compensationHeader = []string{
	"ID", "CIK", "Ticker", "Name", "Position", "Year",
	"Salary", "Bonus", "Stock_Awards", "Option_Awards", "Non_Equity_Comp",
	"Change_in_Pension_Value_and_Deferred_Earnings", "Other_Comp", "Total",
}

var insiderHeader = []string{
	"filingId", "periodOfReport", "issuerCik", "issuerTicker",
	"reportingPersonName", "reportingPersonCik", "officerTitle",
	"isDirector", "isTenPercentOwner", "remarks", "type", "securityTitle",
	"underlyingSecurity", "codingCode", "acquiredDisposed",
	"shares", "sharePrice", "total", "sharesOwnedFollowingTransaction",
}

// CompensationToCSV serializes rows with the compensation header.
// Embedded delimiters and newlines get standard CSV quoting.
func CompensationToCSV(rows []models.CompensationRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(compensationHeader)
	for _, r := range rows {
		w.Write([]string{
			r.ID, r.CIK, r.Ticker, r.Name, r.Position,
			strconv.Itoa(r.Year),
			num(r.Salary), num(r.Bonus), num(r.StockAwards), num(r.OptionAwards),
			num(r.NonEquityComp), num(r.PensionChange), num(r.OtherComp), num(r.Total),
		})
	}
	w.Flush()
	return sb.String()
}

// CompensationFromCSV parses an uploaded compensation CSV. The rows
// must carry a non-empty Ticker column, the discriminator that says
// which dataset the upload belongs to.
func CompensationFromCSV(text string) ([]models.CompensationRow, error) {
	records, err := parseRecords(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(records[0]["Ticker"]) == "" {
		return nil, &SchemaError{Column: "Ticker"}
	}

	rows := make([]models.CompensationRow, 0, len(records))
	for i, m := range records {
		if strings.TrimSpace(m["Ticker"]) == "" {
			return nil, fmt.Errorf("csvbridge: record %d: missing Ticker", i+1)
		}
		row := models.CompensationRow{
			ID:       m["ID"],
			CIK:      m["CIK"],
			Ticker:   m["Ticker"],
			Name:     m["Name"],
			Position: m["Position"],
		}
		var errs []error
		row.Year = int(cellFloat(m, "Year", &errs))
		row.Salary = cellFloat(m, "Salary", &errs)
		row.Bonus = cellFloat(m, "Bonus", &errs)
		row.StockAwards = cellFloat(m, "Stock_Awards", &errs)
		row.OptionAwards = cellFloat(m, "Option_Awards", &errs)
		row.NonEquityComp = cellFloat(m, "Non_Equity_Comp", &errs)
		row.PensionChange = cellFloat(m, "Change_in_Pension_Value_and_Deferred_Earnings", &errs)
		row.OtherComp = cellFloat(m, "Other_Comp", &errs)
		row.Total = cellFloat(m, "Total", &errs)
		if len(errs) > 0 {
			return nil, fmt.Errorf("csvbridge: record %d: %w", i+1, errs[0])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// InsiderToCSV serializes rows with the insider-trading header.
func InsiderToCSV(rows []models.InsiderTransactionRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(insiderHeader)
	for _, r := range rows {
		w.Write([]string{
			r.FilingID, r.PeriodOfReport, r.IssuerCIK, r.IssuerTicker,
			r.ReportingPersonName, r.ReportingPersonCIK, r.OfficerTitle,
			r.IsDirector, r.IsTenPercentOwner, r.Remarks, r.Type, r.SecurityTitle,
			r.UnderlyingSecurity, r.CodingCode, r.AcquiredDisposed,
			num(r.Shares), num(r.SharePrice),
			strconv.FormatInt(r.Total, 10), num(r.SharesOwnedFollowing),
		})
	}
	w.Flush()
	return sb.String()
}

// InsiderFromCSV parses an uploaded insider-trading CSV. The rows
// must carry a non-empty issuerTicker column.
func InsiderFromCSV(text string) ([]models.InsiderTransactionRow, error) {
	records, err := parseRecords(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(records[0]["issuerTicker"]) == "" {
		return nil, &SchemaError{Column: "issuerTicker"}
	}

	rows := make([]models.InsiderTransactionRow, 0, len(records))
	for i, m := range records {
		if strings.TrimSpace(m["issuerTicker"]) == "" {
			return nil, fmt.Errorf("csvbridge: record %d: missing issuerTicker", i+1)
		}
		row := models.InsiderTransactionRow{
			FilingID:            m["filingId"],
			PeriodOfReport:      m["periodOfReport"],
			IssuerCIK:           m["issuerCik"],
			IssuerTicker:        m["issuerTicker"],
			ReportingPersonName: m["reportingPersonName"],
			ReportingPersonCIK:  m["reportingPersonCik"],
			OfficerTitle:        m["officerTitle"],
			IsDirector:          m["isDirector"],
			IsTenPercentOwner:   m["isTenPercentOwner"],
			Remarks:             m["remarks"],
			Type:                m["type"],
			SecurityTitle:       m["securityTitle"],
			UnderlyingSecurity:  m["underlyingSecurity"],
			CodingCode:          m["codingCode"],
			AcquiredDisposed:    m["acquiredDisposed"],
		}
		var errs []error
		row.Shares = cellFloat(m, "shares", &errs)
		row.SharePrice = cellFloat(m, "sharePrice", &errs)
		row.Total = int64(cellFloat(m, "total", &errs))
		row.SharesOwnedFollowing = cellFloat(m, "sharesOwnedFollowingTransaction", &errs)
		if len(errs) > 0 {
			return nil, fmt.Errorf("csvbridge: record %d: %w", i+1, errs[0])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRecords reads the CSV into header-keyed cells, skipping fully
// empty lines. Unknown columns are kept; the typed decoders ignore
// them.
func parseRecords(text string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvbridge: failed to parse CSV: %w", err)
	}
	if len(all) < 2 {
		return nil, ErrEmptyData
	}
	header := all[0]
	records := make([]map[string]string, 0, len(all)-1)
	for _, row := range all[1:] {
		if emptyRow(row) {
			continue
		}
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				m[strings.TrimSpace(h)] = row[i]
			}
		}
		records = append(records, m)
	}
	if len(records) == 0 {
		return nil, ErrEmptyData
	}
	return records, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// num formats a float with the shortest representation that parses
// back to the same value, keeping export/import lossless.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cellFloat(m map[string]string, col string, errs *[]error) float64 {
	s := strings.TrimSpace(m[col])
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("column %s: %w", col, err))
		return 0
	}
	return f
}
