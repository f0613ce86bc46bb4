package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/compare"
	"github.com/five82/storefront/internal/shop"
)

// handleKey routes a key press to the filter input, the detail panel or the
// current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	}

	if m.logLines != nil {
		switch {
		case msg.String() == "esc", key.Matches(msg, m.keys.Log):
			m.logLines = nil
			return m, nil
		case msg.String() == "r":
			return m, m.tailLog(m.logRows())
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Log) {
		if m.logFile == "" {
			m.setNotice(noticeInfo, "logging is disabled")
			return m, nil
		}
		return m, m.tailLog(m.logRows())
	}

	if m.detail != nil {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Catalog):
		m.switchView(ViewCatalog)
	case key.Matches(msg, m.keys.Cart):
		m.switchView(ViewCart)
	case key.Matches(msg, m.keys.Saved):
		m.switchView(ViewSaved)
	case key.Matches(msg, m.keys.Compare):
		m.switchView(ViewCompare)
	case key.Matches(msg, m.keys.Recent):
		m.switchView(ViewRecent)
	case key.Matches(msg, m.keys.Next):
		m.switchView(viewOrder[(int(m.currentView)+1)%viewCount])
	case key.Matches(msg, m.keys.Prev):
		m.switchView(viewOrder[(int(m.currentView)+viewCount-1)%viewCount])

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.cursors[m.currentView] = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursors[m.currentView] = max(m.listLen()-1, 0)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.ClearFilter):
		if m.filter != nil {
			m.filter = nil
			m.filterInput.SetValue("")
			m.clampCursors()
			m.setNotice(noticeInfo, "filter cleared")
			m.savePrefs()
		}

	default:
		return m.handleActionKey(msg)
	}
	return m, nil
}

func (m Model) handleActionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()

	switch {
	case key.Matches(msg, m.keys.Open):
		if ok {
			return m, m.lookup(item)
		}
	case key.Matches(msg, m.keys.Add):
		if ok {
			m.addToCart(item)
		}
	case key.Matches(msg, m.keys.Save):
		if !ok {
			break
		}
		if m.currentView == ViewCart {
			m.stepNotice(m.session.SaveForLater(item.ID))
		} else {
			m.saveForLater(item)
		}
	case key.Matches(msg, m.keys.Toggle):
		if ok {
			m.toggleCompare(item)
		}
	case key.Matches(msg, m.keys.Increase):
		if ok {
			m.changeQuantity(item.ID, 1)
		}
	case key.Matches(msg, m.keys.Decrease):
		if ok {
			m.changeQuantity(item.ID, -1)
		}
	case key.Matches(msg, m.keys.Remove):
		if ok {
			m.removeSelected(item)
		}
	case key.Matches(msg, m.keys.ClearList):
		m.clearCurrent()
	case key.Matches(msg, m.keys.Move):
		if ok {
			m.stepNotice(m.session.MoveToCart(item.ID))
		}
	case key.Matches(msg, m.keys.MoveAll):
		report := m.session.MoveAllToCart()
		level := noticeSuccess
		if report.Failed() > 0 {
			level = noticeWarn
		}
		m.setNotice(level, report.Summary())
	}
	m.clampCursors()
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.detail.item
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.Open):
		m.detail = nil
	case msg.String() == "a":
		m.addToCart(item)
	case msg.String() == "s":
		m.saveForLater(item)
	case msg.String() == "c":
		m.toggleCompare(item)
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		src := strings.TrimSpace(m.filterInput.Value())
		m.filtering = false
		m.filterInput.Blur()
		if src == "" {
			m.filter = nil
			m.clampCursors()
			m.savePrefs()
			return m, nil
		}
		f, err := catalog.CompileFilter(src)
		if err != nil {
			m.setNotice(noticeError, "invalid filter: "+firstLine(err.Error()))
			return m, nil
		}
		m.filter = f
		m.cursors[ViewCatalog] = 0
		m.setNotice(noticeInfo, fmt.Sprintf("%d products match", len(m.visibleCatalog())))
		m.savePrefs()
		return m, nil
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		if m.filter != nil {
			m.filterInput.SetValue(m.filter.String())
		} else {
			m.filterInput.SetValue("")
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) switchView(v View) {
	if v == m.currentView {
		return
	}
	m.currentView = v
	m.keys.syncKeys(v)
	m.clampCursors()
	m.savePrefs()
}

func (m *Model) moveCursor(delta int) {
	n := m.listLen()
	if n == 0 {
		m.cursors[m.currentView] = 0
		return
	}
	c := m.cursors[m.currentView] + delta
	m.cursors[m.currentView] = min(max(c, 0), n-1)
}

func (m *Model) clampCursors() {
	for _, v := range viewOrder {
		n := m.lenOf(v)
		if m.cursors[v] >= n {
			m.cursors[v] = max(n-1, 0)
		}
	}
}

// visibleCatalog is the latest catalog listing after the active filter.
func (m Model) visibleCatalog() []catalog.Item {
	if m.filter == nil {
		return m.snapshot.Items
	}
	return m.filter.Apply(m.snapshot.Items)
}

func (m Model) lenOf(v View) int {
	switch v {
	case ViewCart:
		return len(m.views.cart.Lines)
	case ViewSaved:
		return len(m.views.saved.Items)
	case ViewCompare:
		return len(m.views.compare.Items)
	case ViewRecent:
		return len(m.views.recent.Items)
	default:
		return len(m.visibleCatalog())
	}
}

func (m Model) listLen() int {
	return m.lenOf(m.currentView)
}

// selectedItem returns the product under the cursor in the current view.
func (m Model) selectedItem() (catalog.Item, bool) {
	i := m.cursors[m.currentView]
	if i < 0 || i >= m.listLen() {
		return catalog.Item{}, false
	}
	switch m.currentView {
	case ViewCart:
		return m.views.cart.Lines[i].Product, true
	case ViewSaved:
		return m.views.saved.Items[i], true
	case ViewCompare:
		return m.views.compare.Items[i], true
	case ViewRecent:
		return m.views.recent.Items[i], true
	default:
		return m.visibleCatalog()[i], true
	}
}

func (m *Model) addToCart(item catalog.Item) {
	out, err := m.session.Cart.AddItem(item, 1)
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		m.setNotice(noticeError, stockErr.Error())
	case err != nil:
		m.setNotice(noticeError, err.Error())
	case out.Clamped:
		m.setNotice(noticeWarn, fmt.Sprintf("%s: %s", item.Name, out.Notice()))
	default:
		m.setNotice(noticeSuccess, fmt.Sprintf("added %s to cart (%d)", item.Name, out.Line.Quantity))
	}
}

func (m *Model) saveForLater(item catalog.Item) {
	if m.session.Saved.AddItem(item) {
		m.setNotice(noticeSuccess, "saved "+item.Name+" for later")
		return
	}
	m.setNotice(noticeInfo, item.Name+" is already saved")
}

func (m *Model) toggleCompare(item catalog.Item) {
	added, err := m.session.Compare.Toggle(item)
	switch {
	case errors.Is(err, compare.ErrLimitReached):
		m.setNotice(noticeWarn, fmt.Sprintf("comparison limit reached (%d products)", compare.MaxItems))
	case err != nil:
		m.setNotice(noticeError, err.Error())
	case added:
		m.setNotice(noticeSuccess, "comparing "+item.Name)
	default:
		m.setNotice(noticeInfo, "stopped comparing "+item.Name)
	}
}

func (m *Model) changeQuantity(id string, delta int) {
	line, ok := m.session.Cart.Line(id)
	if !ok {
		return
	}
	out, err := m.session.Cart.UpdateQuantity(id, line.Quantity+delta)
	switch {
	case err != nil:
		m.setNotice(noticeError, err.Error())
	case out.Removed:
		m.setNotice(noticeInfo, "removed "+line.Product.Name)
	case out.Clamped:
		m.setNotice(noticeWarn, out.Notice())
	}
}

func (m *Model) removeSelected(item catalog.Item) {
	var removed bool
	switch m.currentView {
	case ViewCart:
		removed = m.session.Cart.RemoveItem(item.ID)
	case ViewSaved:
		removed = m.session.Saved.RemoveItem(item.ID)
	case ViewCompare:
		removed = m.session.Compare.RemoveItem(item.ID)
	case ViewRecent:
		removed = m.session.Recent.RemoveItem(item.ID)
	}
	if removed {
		m.setNotice(noticeInfo, "removed "+item.Name)
	}
}

func (m *Model) clearCurrent() {
	switch m.currentView {
	case ViewCart:
		m.session.Cart.Clear()
	case ViewSaved:
		m.session.Saved.Clear()
	case ViewCompare:
		m.session.Compare.ClearAll()
	case ViewRecent:
		m.session.Recent.Clear()
	default:
		return
	}
	m.setNotice(noticeInfo, m.currentView.String()+" cleared")
}

func (m *Model) stepNotice(step shop.Step) {
	level := noticeSuccess
	if !step.OK() {
		level = noticeWarn
	}
	m.setNotice(level, step.Notice())
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
