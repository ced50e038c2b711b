package model

// CategoryTotal is the amount posted to one category within a summary period.
type CategoryTotal struct {
	CategoryID string       `json:"categoryId"`
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"kind"`
	TotalCents Cents        `json:"totalCents"`
}

// MonthlySummary aggregates income, expense and net totals for one calendar month.
// Transactions without a resolvable category are counted in TransactionCount
// but contribute to neither IncomeCents nor ExpenseCents.
type MonthlySummary struct {
	Month            YearMonth       `json:"month"`
	Categories       []CategoryTotal `json:"categories"`
	IncomeCents      Cents           `json:"incomeCents"`
	ExpenseCents     Cents           `json:"expenseCents"`
	NetCents         Cents           `json:"netCents"`
	TransactionCount int             `json:"transactionCount"`
}
