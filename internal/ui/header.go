package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/storefront/internal/compare"
	"github.com/five82/storefront/internal/pricing"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	parts := []string{bg.Render("storefront", styles.Logo)}
	parts = append(parts, m.catalogStatus(styles, bg))

	totals := m.session.Totals()
	count := m.views.cart.ItemCount()
	cartStyle := styles.MutedText
	if count > 0 {
		cartStyle = styles.Text
	}
	parts = append(parts,
		bg.Render("Cart:", styles.MutedText)+bg.Space()+
			bg.Render(pluralize(count, "item"), cartStyle)+bg.Space()+
			bg.Render(pricing.Format(totals.Total), styles.AccentText))

	if !compact {
		parts = append(parts,
			bg.Render("Saved:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.views.saved.Items)), styles.Text),
			bg.Render("Compare:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", len(m.views.compare.Items), compare.MaxItems), styles.Text))
	}

	if ts := relativeTime(m.snapshot.LastUpdated, m.now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if err := m.session.PersistError(); err != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("SAVE FAILED", styles.DangerText)+bg.Space()+
				bg.Render(truncate(err.Error(), maxErr), styles.DangerText))
	} else if !compact && m.storageLabel != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.storageLabel, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, bg.Spaces(2)))
}

// catalogStatus summarizes the catalog poll state.
func (m Model) catalogStatus(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case !snap.HasItems && snap.LastError != nil:
		return bg.Render("CATALOG "+classifyCatalogError(snap.LastError), styles.DangerText) +
			bg.Space() + bg.Render("Retrying...", styles.WarningText.Bold(true))
	case !snap.HasItems:
		return bg.Render("Loading catalog...", styles.WarningText.Bold(true))
	case snap.IsOffline():
		return bg.Render("● OFFLINE", styles.DangerText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d products (stale)", len(snap.Items)), styles.MutedText)
	default:
		return bg.Render("● LIVE", styles.SuccessText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d products", len(snap.Items)), styles.Text)
	}
}

// renderTabs renders the view switcher.
func (m Model) renderTabs() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	counts := map[View]string{
		ViewCatalog: fmt.Sprintf("%d", len(m.visibleCatalog())),
		ViewCart:    fmt.Sprintf("%d", m.views.cart.ItemCount()),
		ViewSaved:   fmt.Sprintf("%d", len(m.views.saved.Items)),
		ViewCompare: fmt.Sprintf("%d/%d", len(m.views.compare.Items), compare.MaxItems),
		ViewRecent:  fmt.Sprintf("%d", len(m.views.recent.Items)),
	}

	tabs := make([]string, 0, viewCount)
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s (%s)", i+1, titleCase(v.String()), counts[v])
		style := styles.MutedText
		if v == m.currentView {
			style = styles.AccentText.Bold(true).Underline(true)
		}
		tabs = append(tabs, bg.Render(label, style))
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Padding(0, 1).
		Width(m.width).
		Render(bg.Join(tabs, bg.Spaces(3)))
}

// renderStatusLine shows the filter prompt, the latest notice or the active
// filter, in that order of preference.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var content string
	switch {
	case m.filtering:
		content = m.filterInput.View()
	case m.notice.text != "":
		style := styles.Text
		switch m.notice.level {
		case noticeSuccess:
			style = styles.SuccessText
		case noticeWarn:
			style = styles.WarningText
		case noticeError:
			style = styles.DangerText
		}
		content = bg.Render(truncate(m.notice.text, max(m.width-2, 1)), style)
	case m.filter != nil:
		content = bg.Render("filter:", styles.MutedText) + bg.Space() +
			bg.Render(truncate(m.filter.String(), max(m.width-10, 1)), styles.AccentText)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Padding(0, 1).
		Width(m.width).
		Render(content)
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.logLines != nil:
		commands = []cmd{
			{"r", "Reload"},
			{"esc", "Close"},
		}
	case m.detail != nil:
		commands = []cmd{
			{"a", "Add"},
			{"s", "Save"},
			{"c", "Compare"},
			{"esc", "Close"},
		}
	case m.currentView == ViewCart:
		commands = []cmd{
			{"+/-", "Qty"},
			{"s", "Save"},
			{"x", "Remove"},
			{"X", "Clear"},
			{"j/k", "Navigate"},
			{"Tab", "View"},
			{"?", "More"},
		}
	case m.currentView == ViewSaved:
		commands = []cmd{
			{"m", "To Cart"},
			{"M", "All To Cart"},
			{"x", "Remove"},
			{"X", "Clear"},
			{"j/k", "Navigate"},
			{"Tab", "View"},
			{"?", "More"},
		}
	case m.currentView == ViewCompare:
		commands = []cmd{
			{"enter", "Details"},
			{"a", "Add"},
			{"x", "Remove"},
			{"X", "Clear"},
			{"j/k", "Navigate"},
			{"Tab", "View"},
			{"?", "More"},
		}
	case m.currentView == ViewRecent:
		commands = []cmd{
			{"enter", "Details"},
			{"a", "Add"},
			{"c", "Compare"},
			{"x", "Remove"},
			{"X", "Clear"},
			{"Tab", "View"},
			{"?", "More"},
		}
	default: // ViewCatalog
		commands = []cmd{
			{"enter", "Details"},
			{"a", "Add"},
			{"s", "Save"},
			{"c", "Compare"},
			{"/", m.filterLabel()},
			{"j/k", "Navigate"},
			{"Tab", "View"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func (m Model) filterLabel() string {
	if m.filter != nil {
		return "Filter*"
	}
	return "Filter"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
