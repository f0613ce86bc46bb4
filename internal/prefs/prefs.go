// Package prefs handles storefront shell preferences.
// Preferences are stored through the persistence adapter under "ui-prefs".
package prefs

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/persist"
)

// StorageKey is the persistence key for preferences.
const StorageKey = "ui-prefs"

// Prefs holds shell preferences.
type Prefs struct {
	Theme  string `json:"theme"`
	View   string `json:"view,omitempty"`   // last focused view
	Filter string `json:"filter,omitempty"` // last catalog filter expression
}

const (
	defaultTheme = "Dracula"
	defaultView  = "catalog"
)

// Default returns the preferences used on first run.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, View: defaultView}
}

// Load reads preferences, falling back to defaults when absent or unreadable.
func Load(a *persist.Adapter) Prefs {
	if a == nil {
		return Default()
	}
	p, _, ok := persist.Load[Prefs](a, StorageKey)
	if !ok {
		return Default()
	}
	return p.normalized()
}

// Save writes preferences.
func Save(a *persist.Adapter, p Prefs) error {
	if a == nil {
		return nil
	}
	if _, err := persist.Save(a, StorageKey, p.normalized()); err != nil {
		return errors.Wrap(err, "save prefs")
	}
	return nil
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.View = strings.TrimSpace(p.View)
	if p.View == "" {
		p.View = defaultView
	}
	p.Filter = strings.TrimSpace(p.Filter)
	return p
}
