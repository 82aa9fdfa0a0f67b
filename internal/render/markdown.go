package render

import (
	"fmt"
	"io"
	"strings"

	"kakeibo/internal/core"
)

var tableHeader = []string{"ID", "日付", "担当", "種類", "カテゴリ", "内容", "金額"}

// Markdown writes the entry table followed by the summary.
func Markdown(w io.Writer, entries []core.Entry, s core.Summary) error {
	var b strings.Builder
	b.WriteString("# 家計簿\n\n")
	writeTable(&b, Rows(entries))
	b.WriteString("\n")
	writeSummary(&b, Summary(s))
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryMarkdown writes only the totals.
func SummaryMarkdown(w io.Writer, s core.Summary) error {
	var b strings.Builder
	writeSummary(&b, Summary(s))
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, t Table) {
	b.WriteString("| " + strings.Join(tableHeader, " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(tableHeader)) + "|\n")
	if t.Empty() {
		fmt.Fprintf(b, "| %s |%s\n", t.Placeholder, strings.Repeat("  |", len(tableHeader)-1))
		return
	}
	for _, r := range t.Rows {
		cells := []string{r.Key(), r.Date, r.Member, r.Label, r.Category, r.Description, r.Amount}
		for i, c := range cells {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func writeSummary(b *strings.Builder, t Totals) {
	b.WriteString("## 集計\n\n")
	fmt.Fprintf(b, "- 収入合計: %s\n", t.Income)
	fmt.Fprintf(b, "- 支出合計: %s\n", t.Expense)
	fmt.Fprintf(b, "- 残高: %s\n", t.Balance)
}

// escapeCell keeps user text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
