package model

// LedgerRow is one row of per-year output.
// This is the primary artifact for "what happened" in a projection: it carries
// the intermediate quantities that the result series fold away.
type LedgerRow struct {
	Year int `json:"year"`

	Injection      float64 `json:"injection"`
	Acquisitions   int     `json:"acquisitions"`
	PurchaseOutlay float64 `json:"purchase_outlay"`
	NewDebt        float64 `json:"new_debt"`

	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`

	Rent         float64 `json:"rent"`
	Opex         float64 `json:"opex"`
	IMI          float64 `json:"imi"`
	AIMI         float64 `json:"aimi"`
	Depreciation float64 `json:"depreciation"`

	ProfitBeforeTax float64 `json:"profit_before_tax"`
	CorpTax         float64 `json:"corp_tax"`
	Cashflow        float64 `json:"cashflow"`
	Prepayment      float64 `json:"prepayment"`

	RequiredBuffer float64 `json:"required_buffer"`
	PayoutRatio    float64 `json:"payout_ratio"` // %
	GrossDividend  float64 `json:"gross_dividend"`
	NetDividend    float64 `json:"net_dividend"`

	// Effective rates after overlays, in percent.
	LoanRate    float64 `json:"loan_rate"`
	OpexRatio   float64 `json:"opex_ratio"`
	CorpTaxRate float64 `json:"corp_tax_rate"`
	DividendWHT float64 `json:"dividend_wht"`

	Debt        float64 `json:"debt"`
	Value       float64 `json:"value"`
	CashReserve float64 `json:"cash_reserve"`
}
