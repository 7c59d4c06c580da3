package bot

import (
	"fmt"
	"sort"
	"strings"

	"cryptovision/internal/domain/entity"
)

// MaskKey hides the middle of an API key, keeping the first and last four
// characters. Keys too short to mask safely are fully redacted.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// RenderReport formats the consolidated balance report. Accounts are listed
// in sorted label order, assets within an account by descending quote value.
func RenderReport(p *entity.Portfolio) string {
	if len(p.Accounts) == 0 {
		return "🤷 The portfolio is empty or no exchange could be reached."
	}

	labels := make([]string, 0, len(p.Accounts))
	for label := range p.Accounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("💰 Detailed balance:\n")

	for _, label := range labels {
		fmt.Fprintf(&b, "\n🏛 *%s*\n", label)

		assets := p.Accounts[label]
		symbols := make([]string, 0, len(assets))
		for sym := range assets {
			symbols = append(symbols, sym)
		}
		sort.Slice(symbols, func(i, j int) bool {
			a, c := assets[symbols[i]], assets[symbols[j]]
			if a.ValueUSD != c.ValueUSD {
				return a.ValueUSD > c.ValueUSD
			}
			return symbols[i] < symbols[j]
		})

		for _, sym := range symbols {
			asset := assets[sym]
			fmt.Fprintf(&b, "  🔹 %s: `%.4f` (~$%.2f)\n", sym, asset.Amount, asset.ValueUSD)
		}
		fmt.Fprintf(&b, "  Subtotal: `$%.2f`\n", p.SubtotalUSD(label))
	}

	fmt.Fprintf(&b, "\n══════════════\n💵 TOTAL: `$%.2f`", p.TotalUSD())
	return b.String()
}

// RenderErrors formats the per-account failure lines, or "" when there are
// none.
func RenderErrors(p *entity.Portfolio) string {
	if len(p.Errors) == 0 {
		return ""
	}
	return "⚠️ Some accounts could not be read:\n" + strings.Join(p.Errors, "\n")
}

// RenderProfile lists the user's linked accounts with masked keys.
func RenderProfile(accounts []entity.Account) string {
	var b strings.Builder
	b.WriteString("👤 Your connections:\n")
	for _, acc := range accounts {
		mode := "✅ Real"
		if acc.Demo {
			mode = "🧪 Demo"
		}
		fmt.Fprintf(&b, "• %s `[%s]` (%s)\n", strings.ToUpper(acc.Exchange), MaskKey(acc.APIKey), mode)
	}
	return b.String()
}
