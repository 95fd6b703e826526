// Package normalize flattens the API's nested, irregular response
// shapes into the flat rows the cache and CSV layers work with.
package normalize

import (
	"errors"
	"log/slog"
	"math"

	"findoss/internal/models"
	"findoss/internal/secapi"
)

var errNoIssuer = errors.New("filing has no issuer")

// Compensation maps upstream compensation records to flat rows.
// Field-by-field rename only: one row per record, order preserved, no
// unit conversion, Total passed through verbatim.
func Compensation(records []secapi.CompensationRecord) []models.CompensationRow {
	rows := make([]models.CompensationRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.CompensationRow{
			ID:            r.ID,
			CIK:           r.CIK,
			Ticker:        r.Ticker,
			Name:          r.Name,
			Position:      r.Position,
			Year:          r.Year,
			Salary:        r.Salary,
			Bonus:         r.Bonus,
			StockAwards:   r.StockAwards,
			OptionAwards:  r.OptionAwards,
			NonEquityComp: r.NonEquityIncentiveCompensation,
			PensionChange: r.ChangeInPensionValueAndDeferredEarnings,
			OtherComp:     r.OtherCompensation,
			Total:         r.Total,
		})
	}
	return rows
}

// FlattenFiling expands one filing into one row per entry in its
// derivative and non-derivative transaction lists, in that order. A
// filing with neither list yields no rows. All rows share the
// filing-level fields.
func FlattenFiling(f secapi.Filing) ([]models.InsiderTransactionRow, error) {
	if f.Issuer == nil {
		return nil, errNoIssuer
	}

	base := models.InsiderTransactionRow{
		FilingID:          f.ID,
		PeriodOfReport:    f.PeriodOfReport,
		IssuerCIK:         f.Issuer.CIK,
		IssuerTicker:      f.Issuer.TradingSymbol,
		OfficerTitle:      "N/A",
		IsDirector:        "No",
		IsTenPercentOwner: "No",
		Remarks:           "N/A",
	}
	if f.Remarks != "" {
		base.Remarks = f.Remarks
	}
	if ro := f.ReportingOwner; ro != nil {
		base.ReportingPersonName = ro.Name
		base.ReportingPersonCIK = ro.CIK
		if rel := ro.Relationship; rel != nil {
			if rel.IsOfficer && rel.OfficerTitle != "" {
				base.OfficerTitle = rel.OfficerTitle
			}
			if rel.IsDirector {
				base.IsDirector = "Yes"
			}
			if rel.IsTenPercentOwner {
				base.IsTenPercentOwner = "Yes"
			}
		}
	}

	var rows []models.InsiderTransactionRow
	if f.DerivativeTable != nil {
		for _, tx := range f.DerivativeTable.Transactions {
			rows = append(rows, transactionRow(base, tx, models.TransactionDerivative))
		}
	}
	if f.NonDerivativeTable != nil {
		for _, tx := range f.NonDerivativeTable.Transactions {
			rows = append(rows, transactionRow(base, tx, models.TransactionNonDerivative))
		}
	}
	return rows, nil
}

func transactionRow(base models.InsiderTransactionRow, tx secapi.Transaction, kind string) models.InsiderTransactionRow {
	row := base
	row.Type = kind
	row.SecurityTitle = tx.SecurityTitle
	if kind == models.TransactionDerivative && tx.UnderlyingSecurity != nil {
		row.UnderlyingSecurity = tx.UnderlyingSecurity.Title
	}
	if tx.Coding != nil {
		row.CodingCode = tx.Coding.Code
	}
	if a := tx.Amounts; a != nil {
		row.AcquiredDisposed = a.AcquiredDisposedCode
		row.Shares = a.Shares
		row.SharePrice = a.PricePerShare
	}
	if p := tx.PostTransactionAmounts; p != nil {
		row.SharesOwnedFollowing = p.SharesOwnedFollowingTransaction
	}
	row.Total = int64(math.Ceil(row.Shares * row.SharePrice))
	return row
}

// FlattenFilings flattens a batch in filing order, preserving each
// filing's internal transaction order. A malformed filing is logged
// and contributes zero rows; it never aborts the batch.
func FlattenFilings(filings []secapi.Filing) []models.InsiderTransactionRow {
	rows := make([]models.InsiderTransactionRow, 0)
	for _, f := range filings {
		fr, err := FlattenFiling(f)
		if err != nil {
			slog.Warn("normalize: skipping malformed filing", "filingId", f.ID, "err", err)
			continue
		}
		rows = append(rows, fr...)
	}
	return rows
}
