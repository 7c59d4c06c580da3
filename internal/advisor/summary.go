package advisor

import (
	"fmt"
	"sort"
	"strings"

	"cryptovision/internal/domain/entity"
)

// Summarize renders a portfolio as the compact single-line form fed to the
// model. Accounts and assets are sorted so the same portfolio always
// serializes the same way.
func Summarize(p *entity.Portfolio) string {
	if p == nil || p.Empty() {
		return "The portfolio is empty."
	}

	labels := make([]string, 0, len(p.Accounts))
	for label := range p.Accounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	for i, label := range labels {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString("[")
		b.WriteString(label)
		b.WriteString(": ")

		assets := p.Accounts[label]
		symbols := make([]string, 0, len(assets))
		for sym := range assets {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)

		for j, sym := range symbols {
			if j > 0 {
				b.WriteString(", ")
			}
			a := assets[sym]
			fmt.Fprintf(&b, "%s: %.4f ($%.2f)", sym, a.Amount, a.ValueUSD)
		}
		b.WriteString("]")
	}

	if len(p.Errors) > 0 {
		fmt.Fprintf(&b, "; unavailable: %s", strings.Join(p.Errors, "; "))
	}
	return b.String()
}
