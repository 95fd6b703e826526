package secapi

// Upstream response shapes. Field names follow the API's JSON; the
// normalize package maps these into flat rows.

type CompensationRecord struct {
	ID                                      string  `json:"id"`
	CIK                                     string  `json:"cik"`
	Ticker                                  string  `json:"ticker"`
	Name                                    string  `json:"name"`
	Position                                string  `json:"position"`
	Year                                    int     `json:"year"`
	Salary                                  float64 `json:"salary"`
	Bonus                                   float64 `json:"bonus"`
	StockAwards                             float64 `json:"stockAwards"`
	OptionAwards                            float64 `json:"optionAwards"`
	NonEquityIncentiveCompensation          float64 `json:"nonEquityIncentiveCompensation"`
	ChangeInPensionValueAndDeferredEarnings float64 `json:"changeInPensionValueAndDeferredEarnings"`
	OtherCompensation                       float64 `json:"otherCompensation"`
	Total                                   float64 `json:"total"`
}

// Filing is one insider-trading disclosure. Optional nested objects
// are pointers: the API omits whole sections for many filings.
type Filing struct {
	ID                 string            `json:"id"`
	FiledAt            string            `json:"filedAt"`
	PeriodOfReport     string            `json:"periodOfReport"`
	Issuer             *Issuer           `json:"issuer"`
	ReportingOwner     *ReportingOwner   `json:"reportingOwner"`
	Remarks            string            `json:"remarks"`
	DerivativeTable    *TransactionTable `json:"derivativeTable"`
	NonDerivativeTable *TransactionTable `json:"nonDerivativeTable"`
}

type Issuer struct {
	CIK           string `json:"cik"`
	TradingSymbol string `json:"tradingSymbol"`
}

type ReportingOwner struct {
	Name         string        `json:"name"`
	CIK          string        `json:"cik"`
	Relationship *Relationship `json:"relationship"`
}

type Relationship struct {
	IsOfficer         bool   `json:"isOfficer"`
	OfficerTitle      string `json:"officerTitle"`
	IsDirector        bool   `json:"isDirector"`
	IsTenPercentOwner bool   `json:"isTenPercentOwner"`
}

type TransactionTable struct {
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	SecurityTitle          string              `json:"securityTitle"`
	Coding                 *Coding             `json:"coding"`
	Amounts                *Amounts            `json:"amounts"`
	PostTransactionAmounts *PostAmounts        `json:"postTransactionAmounts"`
	UnderlyingSecurity     *UnderlyingSecurity `json:"underlyingSecurity"`
}

type Coding struct {
	Code string `json:"code"`
}

type Amounts struct {
	Shares               float64 `json:"shares"`
	PricePerShare        float64 `json:"pricePerShare"`
	AcquiredDisposedCode string  `json:"acquiredDisposedCode"`
}

type PostAmounts struct {
	SharesOwnedFollowingTransaction float64 `json:"sharesOwnedFollowingTransaction"`
}

type UnderlyingSecurity struct {
	Title string `json:"title"`
}
