package models

import "fmt"

// Domain identifies one of the two independent data verticals. Each
// domain has its own cache, normalizer and fetcher.
type Domain string

const (
	DomainCompensation   Domain = "compensation"
	DomainInsiderTrading Domain = "insider-trading"
)

func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainCompensation, DomainInsiderTrading:
		return Domain(s), nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// Transaction type discriminator on InsiderTransactionRow.
const (
	TransactionDerivative    = "derivative"
	TransactionNonDerivative = "nonDerivative"
)

// CompensationRow is one executive's compensation for one fiscal year
// at one company. All amounts are upstream pass-through; Total is the
// value the filing reported, never recomputed locally.
type CompensationRow struct {
	ID            string  `json:"ID"`
	CIK           string  `json:"CIK"`
	Ticker        string  `json:"Ticker"`
	Name          string  `json:"Name"`
	Position      string  `json:"Position"`
	Year          int     `json:"Year"`
	Salary        float64 `json:"Salary"`
	Bonus         float64 `json:"Bonus"`
	StockAwards   float64 `json:"Stock_Awards"`
	OptionAwards  float64 `json:"Option_Awards"`
	NonEquityComp float64 `json:"Non_Equity_Comp"`
	PensionChange float64 `json:"Change_in_Pension_Value_and_Deferred_Earnings"`
	OtherComp     float64 `json:"Other_Comp"`
	Total         float64 `json:"Total"`
}

// InsiderTransactionRow is one buy/sell/derivative event flattened out
// of a single filing. Rows from the same filing share the filing-level
// fields (issuer, reporting person, remarks).
type InsiderTransactionRow struct {
	FilingID             string  `json:"filingId"`
	PeriodOfReport       string  `json:"periodOfReport"`
	IssuerCIK            string  `json:"issuerCik"`
	IssuerTicker         string  `json:"issuerTicker"`
	ReportingPersonName  string  `json:"reportingPersonName"`
	ReportingPersonCIK   string  `json:"reportingPersonCik"`
	OfficerTitle         string  `json:"officerTitle"` // "N/A" unless the person is an officer
	IsDirector           string  `json:"isDirector"`   // "Yes" | "No"
	IsTenPercentOwner    string  `json:"isTenPercentOwner"`
	Remarks              string  `json:"remarks"`
	Type                 string  `json:"type"` // TransactionDerivative | TransactionNonDerivative
	SecurityTitle        string  `json:"securityTitle"`
	UnderlyingSecurity   string  `json:"underlyingSecurity"` // derivative rows only
	CodingCode           string  `json:"codingCode"`
	AcquiredDisposed     string  `json:"acquiredDisposed"` // "A" | "D"
	Shares               float64 `json:"shares"`
	SharePrice           float64 `json:"sharePrice"`
	Total                int64   `json:"total"` // ceil(shares * sharePrice)
	SharesOwnedFollowing float64 `json:"sharesOwnedFollowingTransaction"`
}

// CompanyDataset groups all cached rows for one ticker. Tickers are
// stored uppercase; a domain's cache holds at most one dataset per
// ticker.
type CompanyDataset[T any] struct {
	Ticker string `json:"ticker"`
	Rows   []T    `json:"data"`
}
