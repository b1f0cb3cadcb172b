package projection

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"spv-projection/internal/model"
)

func WriteLedgerCSV(path string, ledger []model.LedgerRow) error {
	return writeFile(path, func(w io.Writer) error { return EncodeLedgerCSV(w, ledger) })
}

func WriteRangeCSV(path string, rng *model.ScenarioRange) error {
	return writeFile(path, func(w io.Writer) error { return EncodeRangeCSV(w, rng) })
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeLedgerCSV writes one row per year. Amounts have 2 decimals, rates 4.
func EncodeLedgerCSV(out io.Writer, ledger []model.LedgerRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"year",
		"injection",
		"acquisitions",
		"purchase_outlay",
		"new_debt",
		"interest",
		"principal",
		"rent",
		"opex",
		"imi",
		"aimi",
		"depreciation",
		"profit_before_tax",
		"corp_tax",
		"cashflow",
		"prepayment",
		"required_buffer",
		"payout_ratio",
		"gross_dividend",
		"net_dividend",
		"loan_rate",
		"opex_ratio",
		"corp_tax_rate",
		"dividend_wht",
		"debt",
		"value",
		"cash_reserve",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Year),
			fmtAmount(r.Injection),
			strconv.Itoa(r.Acquisitions),
			fmtAmount(r.PurchaseOutlay),
			fmtAmount(r.NewDebt),
			fmtAmount(r.Interest),
			fmtAmount(r.Principal),
			fmtAmount(r.Rent),
			fmtAmount(r.Opex),
			fmtAmount(r.IMI),
			fmtAmount(r.AIMI),
			fmtAmount(r.Depreciation),
			fmtAmount(r.ProfitBeforeTax),
			fmtAmount(r.CorpTax),
			fmtAmount(r.Cashflow),
			fmtAmount(r.Prepayment),
			fmtAmount(r.RequiredBuffer),
			fmtRate(r.PayoutRatio),
			fmtAmount(r.GrossDividend),
			fmtAmount(r.NetDividend),
			fmtRate(r.LoanRate),
			fmtRate(r.OpexRatio),
			fmtRate(r.CorpTaxRate),
			fmtRate(r.DividendWHT),
			fmtAmount(r.Debt),
			fmtAmount(r.Value),
			fmtAmount(r.CashReserve),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// EncodeRangeCSV writes value, equity and net dividends per year for each
// run present in the bundle.
func EncodeRangeCSV(out io.Writer, rng *model.ScenarioRange) error {
	w := csv.NewWriter(out)

	runs := []struct {
		name string
		r    *model.Result
	}{{"base", rng.Base}, {"min", rng.Min}, {"max", rng.Max}}

	header := []string{"year"}
	for _, run := range runs {
		if run.r == nil {
			continue
		}
		header = append(header, run.name+"_value", run.name+"_equity", run.name+"_dividends")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for y := 0; y <= rng.Base.Years; y++ {
		row := []string{strconv.Itoa(y)}
		for _, run := range runs {
			if run.r == nil {
				continue
			}
			row = append(row, fmtAmount(run.r.Value[y]), fmtAmount(run.r.Equity[y]), fmtAmount(run.r.Dividends[y]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtAmount(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func fmtRate(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}
