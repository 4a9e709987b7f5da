package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/storefront/internal/catalog"
)

const (
	cardWidth    = 30
	defaultWidth = 80
)

// renderCard draws one product: image reference, title and price.
func renderCard(p catalog.Product, prefix string) string {
	inner := cardWidth - 4
	lines := []string{
		mutedStyle.Render(ansi.Truncate(fmt.Sprintf("#%d %s", p.ID, p.Image), inner, "…")),
		ansi.Truncate(p.Title, inner, "…"),
		priceStyle.Render(formatPrice(prefix, p.Price)),
	}
	return cardStyle.Width(cardWidth - 2).Render(strings.Join(lines, "\n"))
}

// renderGrid lays cards out left to right in as many columns as width allows.
func renderGrid(ps []catalog.Product, prefix string, width int) string {
	if len(ps) == 0 {
		return mutedStyle.Render("No products.")
	}
	if width <= 0 {
		width = defaultWidth
	}
	cols := max(1, width/cardWidth)

	var rows []string
	for start := 0; start < len(ps); start += cols {
		end := min(start+cols, len(ps))
		cards := make([]string, 0, end-start)
		for _, p := range ps[start:end] {
			cards = append(cards, renderCard(p, prefix))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func formatPrice(prefix string, price float64) string {
	return strings.TrimSpace(fmt.Sprintf("%s %.2f", prefix, price))
}
