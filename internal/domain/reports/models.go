package reports

// TeamTotals are the raw per-team sums read from storage.
type TeamTotals struct {
	TeamID   string
	TeamName string
	Revenue  float64
	Payroll  float64
	Expenses float64
}

type TeamFinance struct {
	TeamID   string  `json:"teamId"`
	TeamName string  `json:"teamName"`
	Revenue  float64 `json:"revenue"`
	Payroll  float64 `json:"payroll"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type CompanyFinance struct {
	Revenue  float64 `json:"revenue"`
	Payroll  float64 `json:"payroll"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type FinanceReport struct {
	Teams   []TeamFinance  `json:"teams"`
	Company CompanyFinance `json:"company"`
}
