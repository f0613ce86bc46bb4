// Package ui provides the terminal storefront shell.
//
// # Architecture Overview
//
// The UI is a bubbletea program styled with lipgloss. It never owns shopper
// state: every mutation goes through the shop.Session stores, and the model
// keeps only subscribed read views that the stores replace after each change.
// All mutations run on the bubbletea update goroutine.
//
// # Package Structure
//
//   - model.go: Model, Options, message types and Run
//   - actions.go: key routing and store mutations
//   - views.go: body rendering for each view and the product panel
//   - header.go: status bar, view tabs, notice line and command bar
//   - keys.go: bubbles/key bindings and help
//   - theme.go, bgstyle.go: color themes and background-safe rendering
//
// # View Types
//
//   - Catalog: the polled product list, optionally narrowed by an expr filter
//   - Cart: lines with quantities and the order summary
//   - Saved: products set aside, with move-to-cart
//   - Compare: up to four products side by side
//   - Recent: recently viewed products, newest first
//
// # Catalog Updates
//
// The app's poller delivers catalog.Snapshot values over a channel. Each one
// replaces the listing and reconciles cart stock on the update goroutine.
//
// # Log Panel
//
// L opens the tail of the diagnostic log (obs.Tail), coloured by record
// level. It is read in a tea.Cmd so a slow disk never blocks input.
//
// # Notices
//
// Invariant violations are shown specifically ("only 2 left in stock",
// "comparison limit reached") on the notice line above the command bar.
package ui
