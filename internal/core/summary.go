package core

// Summary holds the aggregate totals of a collection.
type Summary struct {
	TotalIncome  Amount `json:"totalIncome"`
	TotalExpense Amount `json:"totalExpense"`
	Balance      Amount `json:"balance"`
}

// Summarize recomputes the totals from scratch.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(e.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(e.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}
