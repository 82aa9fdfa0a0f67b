// Package render projects ledger entries and totals into view models for
// the HTML templates and the admin CLI.
package render

import (
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"

	"kakeibo/internal/core"
)

// User-facing messages.
const (
	EmptyMessage         = "取引履歴はありません。"
	InvalidInputMessage  = "すべての項目を正しく入力してください。"
	ConfirmDeleteMessage = "この取引を削除してもよろしいですか？"
	DeleteLabel          = "削除"
)

// TableColumns is the number of columns in the entry table, including the
// delete control.
const TableColumns = 7

// Row is one rendered entry.
type Row struct {
	ID          int64
	Date        string
	Member      string
	Label       string
	Category    string
	Description string
	Amount      string
	Class       string
}

// Key is the row's id as used in element ids and URLs.
func (r Row) Key() string { return strconv.FormatInt(r.ID, 10) }

// Table is the rendered entry list. When Rows is empty the view shows
// Placeholder across all columns.
type Table struct {
	Rows        []Row
	Placeholder string
	Columns     int
}

// Empty reports whether the placeholder row is shown.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Totals holds the formatted summary figures.
type Totals struct {
	Income  string
	Expense string
	Balance string
}

// YenSign is the full-width yen sign used by ja-JP currency formatting.
const YenSign = "￥"

// FormatYen formats a as Japanese yen, rounded to whole yen, using the JPY
// separators and template with the full-width sign ("￥1,234", "-￥500").
// It works on the decimal digits, so totals never overflow.
func FormatYen(a core.Amount) string {
	cur := money.GetCurrency(money.JPY)
	digits := a.Round(0).Abs().StringFixed(0)
	out := strings.Replace(cur.Template, "1", groupDigits(digits, cur.Thousand), 1)
	out = strings.Replace(out, "$", YenSign, 1)
	if a.Round(0).IsNegative() {
		out = "-" + out
	}
	return out
}

func groupDigits(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// RowFor renders a single entry.
func RowFor(e core.Entry) Row {
	class := "expense-row"
	if e.Type == core.Income {
		class = "income-row"
	}
	return Row{
		ID:          e.ID,
		Date:        e.Date,
		Member:      e.Member,
		Label:       e.Type.Label(),
		Category:    e.Category,
		Description: e.Description,
		Amount:      FormatYen(e.Amount),
		Class:       class,
	}
}

// Rows renders entries in the order given.
func Rows(entries []core.Entry) Table {
	t := Table{Placeholder: EmptyMessage, Columns: TableColumns}
	if len(entries) == 0 {
		return t
	}
	t.Rows = make([]Row, 0, len(entries))
	for _, e := range entries {
		t.Rows = append(t.Rows, RowFor(e))
	}
	return t
}

// Summary formats the three totals.
func Summary(s core.Summary) Totals {
	return Totals{
		Income:  FormatYen(s.TotalIncome),
		Expense: FormatYen(s.TotalExpense),
		Balance: FormatYen(s.Balance),
	}
}
