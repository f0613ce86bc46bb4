package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/compare"
	"github.com/five82/storefront/internal/obs"
	"github.com/five82/storefront/internal/pricing"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading storefront..."
	}

	parts := []string{m.renderHeader(), m.renderTabs()}
	helpView := ""
	if m.showHelp {
		helpView = lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))
	}
	bodyHeight := m.height - 4
	if helpView != "" {
		bodyHeight -= lipgloss.Height(helpView)
	}

	parts = append(parts, m.renderBody(max(bodyHeight, 1)), m.renderStatusLine())
	if helpView != "" {
		parts = append(parts, helpView)
	}
	parts = append(parts, m.renderCommandBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderBody draws the current view (or the detail panel) into a box of
// height rows.
func (m Model) renderBody(height int) string {
	var lines []string
	switch {
	case m.logLines != nil:
		lines = m.logPanelLines()
	case m.detail != nil:
		lines = m.detailLines()
	case m.currentView == ViewCart:
		lines = m.cartLines(height)
	case m.currentView == ViewSaved:
		lines = m.itemLines(m.views.saved.Items, height, "Nothing saved for later")
	case m.currentView == ViewCompare:
		lines = m.compareLines()
	case m.currentView == ViewRecent:
		lines = m.itemLines(m.views.recent.Items, height, "No recently viewed products")
	default:
		lines = m.catalogLines(height)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// window returns the [start, end) slice of n rows that keeps cursor visible
// in a viewport of rows lines.
func window(n, cursor, rows int) (start, end int) {
	if rows <= 0 || n == 0 {
		return 0, 0
	}
	if cursor >= rows {
		start = cursor - rows + 1
	}
	return start, min(start+rows, n)
}

func (m Model) contentWidth() int {
	return max(m.width-2, 20)
}

// stockBadge labels an item's availability.
func stockBadge(it catalog.Item) (label, badge string) {
	switch {
	case it.Stock <= 0:
		return "SOLD OUT", "sold_out"
	case it.Stock <= 3:
		return fmt.Sprintf("ONLY %d LEFT", it.Stock), "low_stock"
	default:
		return "IN STOCK", "in_stock"
	}
}

// priceLabel renders the price with a sale marker.
func priceLabel(it catalog.Item) string {
	s := pricing.Format(it.Price)
	if it.OnSale() {
		s += fmt.Sprintf(" -%d%%", pricing.DiscountPercent(it.Price, *it.OriginalPrice))
	}
	return s
}

// flags marks where else the shopper has put an item.
func (m Model) flags(id string) string {
	var f []string
	if line, ok := m.views.cart.Line(id); ok {
		f = append(f, fmt.Sprintf("cart×%d", line.Quantity))
	}
	if m.views.saved.Items.Contains(id) {
		f = append(f, "saved")
	}
	if m.views.compare.Items.Contains(id) {
		f = append(f, "compare")
	}
	return strings.Join(f, " ")
}

// itemRow renders one product row. The selected row is drawn plain on the
// selection color so nested styles don't break the highlight.
func (m Model) itemRow(it catalog.Item, selected bool, styles Styles) string {
	width := m.contentWidth()
	nameW := max(width-52, 12)
	label, badge := stockBadge(it)
	flags := m.flags(it.ID)

	if selected {
		plain := fmt.Sprintf("▸ %s %s %-12s %s", padRight(it.Name, nameW), padRight(priceLabel(it), 16), label, flags)
		return styles.Selected.Width(width).Render(truncate(plain, width))
	}
	return "  " + styles.Text.Render(padRight(it.Name, nameW)) + " " +
		styles.AccentText.Render(padRight(priceLabel(it), 16)) + " " +
		styles.BadgeStyle(badge).Render(label) + " " +
		styles.MutedText.Render(flags)
}

func (m Model) emptyLine(styles Styles, text string) []string {
	return []string{"", styles.MutedText.Render(text)}
}

func (m Model) catalogLines(height int) []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	items := m.visibleCatalog()
	if len(items) == 0 {
		switch {
		case !m.snapshot.HasItems && m.snapshot.LastError != nil:
			return m.emptyLine(styles, "Catalog unavailable: "+m.snapshot.LastError.Error())
		case !m.snapshot.HasItems:
			return m.emptyLine(styles, "Loading catalog...")
		case m.filter != nil:
			return m.emptyLine(styles, "No products match "+m.filter.String())
		default:
			return m.emptyLine(styles, "The catalog is empty")
		}
	}
	return m.listRows(items, height, styles)
}

func (m Model) itemLines(items catalog.Items, height int, empty string) []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	if len(items) == 0 {
		return m.emptyLine(styles, empty)
	}
	return m.listRows(items, height, styles)
}

func (m Model) listRows(items []catalog.Item, height int, styles Styles) []string {
	cursor := m.cursors[m.currentView]
	start, end := window(len(items), cursor, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.itemRow(items[i], i == cursor, styles))
	}
	return lines
}

// cartLines renders the cart lines followed by the order summary.
func (m Model) cartLines(height int) []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	lines := m.views.cart.Lines
	if len(lines) == 0 {
		return m.emptyLine(styles, "Your cart is empty")
	}

	width := m.contentWidth()
	nameW := max(width-44, 12)
	summary := m.cartSummary(styles)
	rows := max(height-len(summary)-2, 1)

	out := []string{styles.FaintText.Render(fmt.Sprintf("  %s %12s %5s %12s  %s",
		padRight("Product", nameW), "Unit", "Qty", "Total", "Stock"))}

	cursor := m.cursors[ViewCart]
	start, end := window(len(lines), cursor, rows)
	for i := start; i < end; i++ {
		l := lines[i]
		label, badge := stockBadge(l.Product)
		row := fmt.Sprintf("%s %12s %5d %12s", padRight(l.Product.Name, nameW),
			pricing.Format(l.Product.Price), l.Quantity, pricing.Format(l.Total()))
		if i == cursor {
			out = append(out, styles.Selected.Width(width).Render("▸ "+row+"  "+label))
			continue
		}
		out = append(out, "  "+styles.Text.Render(row)+"  "+styles.BadgeStyle(badge).Render(label))
	}
	out = append(out, "")
	return append(out, summary...)
}

func (m Model) cartSummary(styles Styles) []string {
	t := m.session.Totals()
	row := func(label, value string, style lipgloss.Style) string {
		return styles.MutedText.Render(fmt.Sprintf("  %-12s", label)) + style.Render(fmt.Sprintf("%12s", value))
	}
	shipping := pricing.Format(t.Shipping)
	shipStyle := styles.Text
	if t.FreeShipping() {
		shipping = "FREE"
		shipStyle = styles.SuccessText
	}
	lines := []string{
		row("Subtotal", pricing.Format(t.Subtotal), styles.Text),
		row("Shipping", shipping, shipStyle),
		row("Tax", pricing.Format(t.Tax), styles.Text),
		row("Total", pricing.Format(t.Total), styles.AccentText.Bold(true)),
	}
	if t.UntilFreeShipping.IsPositive() {
		lines = append(lines, styles.InfoText.Render(
			fmt.Sprintf("  Add %s more for free shipping", pricing.Format(t.UntilFreeShipping))))
	}
	return lines
}

// compareLines lays the compared products out side by side.
func (m Model) compareLines() []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	items := m.views.compare.Items
	if len(items) == 0 {
		return m.emptyLine(styles, fmt.Sprintf("Press c on up to %d products to compare them", compare.MaxItems))
	}

	labelW := 10
	colW := max((m.contentWidth()-labelW)/compare.MaxItems, 14)
	cursor := m.cursors[ViewCompare]

	cell := func(s string) string { return padRight(" "+s, colW) }
	row := func(label string, value func(catalog.Item) string) string {
		var b strings.Builder
		b.WriteString(styles.MutedText.Render(padRight(label, labelW)))
		for _, it := range items {
			b.WriteString(styles.Text.Render(cell(value(it))))
		}
		return b.String()
	}

	var head strings.Builder
	head.WriteString(padRight("", labelW))
	for i, it := range items {
		if i == cursor {
			head.WriteString(styles.Selected.Render(cell(it.Name)))
			continue
		}
		head.WriteString(styles.AccentText.Bold(true).Render(cell(it.Name)))
	}

	return []string{
		head.String(),
		row("Price", func(it catalog.Item) string { return pricing.Format(it.Price) }),
		row("Was", func(it catalog.Item) string {
			if !it.OnSale() {
				return "-"
			}
			return pricing.Format(*it.OriginalPrice)
		}),
		row("Discount", func(it catalog.Item) string {
			if !it.OnSale() {
				return "-"
			}
			return fmt.Sprintf("%d%%", pricing.DiscountPercent(it.Price, *it.OriginalPrice))
		}),
		row("Stock", func(it catalog.Item) string { label, _ := stockBadge(it); return label }),
		row("Category", func(it catalog.Item) string { return it.Category }),
		row("In cart", func(it catalog.Item) string {
			if line, ok := m.views.cart.Line(it.ID); ok {
				return fmt.Sprintf("%d", line.Quantity)
			}
			return "-"
		}),
	}
}

// detailLines renders the product panel.
func (m Model) detailLines() []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	it := m.detail.item
	label, badge := stockBadge(it)

	lines := []string{
		styles.AccentText.Bold(true).Render(it.Name) + " " + styles.FaintText.Render(it.Slug),
		"",
		styles.MutedText.Render("Price     ") + styles.Text.Render(pricing.Format(it.Price)),
	}
	if it.OnSale() {
		lines = append(lines, styles.MutedText.Render("Was       ")+
			styles.FaintText.Strikethrough(true).Render(pricing.Format(*it.OriginalPrice))+" "+
			styles.BadgeStyle("sale").Render(fmt.Sprintf("-%d%%", pricing.DiscountPercent(it.Price, *it.OriginalPrice))))
	}
	lines = append(lines,
		styles.MutedText.Render("Stock     ")+styles.BadgeStyle(badge).Render(label),
		styles.MutedText.Render("Category  ")+styles.Text.Render(it.Category),
	)
	if thumb := it.Thumbnail(); thumb != "" {
		lines = append(lines, styles.MutedText.Render("Image     ")+styles.FaintText.Render(truncateMiddle(thumb, 60)))
	}
	if f := m.flags(it.ID); f != "" {
		lines = append(lines, styles.MutedText.Render("Yours     ")+styles.InfoText.Render(f))
	}

	if len(m.detail.related) > 0 {
		lines = append(lines, "", styles.MutedText.Bold(true).Render("Related"))
		for _, r := range m.detail.related {
			lines = append(lines, "  "+styles.Text.Render(padRight(r.Name, 30))+" "+styles.AccentText.Render(priceLabel(r)))
		}
	}
	return lines
}

// logRows is how many log lines fit the body below the panel title.
func (m Model) logRows() int {
	return max(m.height-6, 10)
}

func (m Model) logPanelLines() []string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	lines := []string{styles.MutedText.Bold(true).Render("Log") + " " + styles.FaintText.Render(truncateMiddle(m.logFile, 60))}
	if len(m.logLines) == 0 {
		return append(lines, styles.FaintText.Render("  log is empty"))
	}
	width := max(m.width-4, 20)
	for _, line := range m.logLines {
		style := styles.Text
		switch lvl := obs.LineLevel(line); {
		case lvl >= slog.LevelError:
			style = styles.DangerText
		case lvl >= slog.LevelWarn:
			style = styles.WarningText
		case lvl < slog.LevelInfo:
			style = styles.FaintText
		}
		lines = append(lines, style.Render(truncate(line, width)))
	}
	return lines
}
