package reports

import "math"

// BuildFinanceReport derives profit per team and sums the company line.
// Amounts are rounded to cents after the arithmetic.
func BuildFinanceReport(totals []TeamTotals) FinanceReport {
	report := FinanceReport{Teams: make([]TeamFinance, 0, len(totals))}
	var company CompanyFinance
	for _, t := range totals {
		profit := t.Revenue - t.Payroll - t.Expenses
		report.Teams = append(report.Teams, TeamFinance{
			TeamID:   t.TeamID,
			TeamName: t.TeamName,
			Revenue:  cents(t.Revenue),
			Payroll:  cents(t.Payroll),
			Expenses: cents(t.Expenses),
			Profit:   cents(profit),
		})
		company.Revenue += t.Revenue
		company.Payroll += t.Payroll
		company.Expenses += t.Expenses
		company.Profit += profit
	}
	report.Company = CompanyFinance{
		Revenue:  cents(company.Revenue),
		Payroll:  cents(company.Payroll),
		Expenses: cents(company.Expenses),
		Profit:   cents(company.Profit),
	}
	return report
}

func cents(value float64) float64 {
	return math.Round(value*100) / 100
}
