package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap lists every binding. Bindings that only apply to some views are
// enabled and disabled by Model.syncKeys.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Next   key.Binding
	Prev   key.Binding

	Catalog key.Binding
	Cart    key.Binding
	Saved   key.Binding
	Compare key.Binding
	Recent  key.Binding

	Open        key.Binding
	Add         key.Binding
	Save        key.Binding
	Toggle      key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Increase    key.Binding
	Decrease    key.Binding
	Remove      key.Binding
	ClearList   key.Binding
	Move        key.Binding
	MoveAll     key.Binding

	Log   key.Binding
	Theme key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),

		Catalog: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "catalog")),
		Cart:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "cart")),
		Saved:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "saved")),
		Compare: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "compare")),
		Recent:  key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "recent")),

		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to cart")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save for later")),
		Toggle:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Increase:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
		Decrease:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less")),
		Remove:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		ClearList:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear")),
		Move:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move to cart")),
		MoveAll:     key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "move all")),

		Log:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log")),
		Theme: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Add, k.Save, k.Toggle, k.Remove, k.Move, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Next, k.Prev},
		{k.Catalog, k.Cart, k.Saved, k.Compare, k.Recent},
		{k.Open, k.Add, k.Save, k.Toggle, k.Filter, k.ClearFilter},
		{k.Increase, k.Decrease, k.Remove, k.ClearList, k.Move, k.MoveAll},
		{k.Log, k.Theme, k.Help, k.Quit},
	}
}

// syncKeys enables the action bindings that apply to view.
func (k *keyMap) syncKeys(v View) {
	k.Open.SetEnabled(v == ViewCatalog || v == ViewRecent || v == ViewCompare)
	k.Add.SetEnabled(v == ViewCatalog || v == ViewRecent || v == ViewCompare)
	k.Save.SetEnabled(v == ViewCatalog || v == ViewCart)
	k.Toggle.SetEnabled(v == ViewCatalog || v == ViewRecent)
	k.Filter.SetEnabled(v == ViewCatalog)
	k.ClearFilter.SetEnabled(v == ViewCatalog)
	k.Increase.SetEnabled(v == ViewCart)
	k.Decrease.SetEnabled(v == ViewCart)
	k.Remove.SetEnabled(v != ViewCatalog)
	k.ClearList.SetEnabled(v != ViewCatalog)
	k.Move.SetEnabled(v == ViewSaved)
	k.MoveAll.SetEnabled(v == ViewSaved)
}
