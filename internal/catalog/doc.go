// Package catalog defines the product snapshot type the commerce stores hold
// and the read-only catalog service they consume.
//
// # Overview
//
// The catalog is an external collaborator. Stores never write through it; they
// copy an Item by value when a shopper adds, saves, compares or views a
// product, and look products up by ID when freshness matters (stock).
//
// # Sources
//
//   - Static: an in-memory list, usually loaded from a TOML file with LoadFile
//   - Client: a JSON HTTP client for /api/products, /api/products/{slug} and
//     /api/products/{slug}/related
//
// Both satisfy Source. ProductBySlug returns ErrNotFound (wrapped) when the
// product does not exist.
//
// # TOML Format
//
//	[[products]]
//	id = "p-100"
//	slug = "rope-toy"
//	name = "Rope Toy"
//	price = 12.5
//	original_price = 15.0
//	stock = 8
//	category = "toys"
//	images = ["https://cdn.example.com/rope.jpg"]
//
// # Filters
//
// CompileFilter compiles an expr-lang expression evaluated per item with the
// variables id, slug, name, category, price, stock, on_sale and in_stock:
//
//	f, err := catalog.CompileFilter(`category == "toys" && price < 20`)
//	visible := f.Apply(items)
//
// # Polling
//
// Snapshot records the last successful listing plus error bookkeeping, the
// same shape the shell uses to show an offline banner and to reconcile cart
// stock against live data.
package catalog
