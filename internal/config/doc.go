// Package config loads the storefront configuration file.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/storefront/config.toml (default)
//  3. If the file doesn't exist, start from Default()
//  4. Fields that are missing or blank keep their defaults
//
// STOREFRONT_* environment variables are applied on top of the file, and
// LoadEnvFile can populate them from a dotenv file first.
//
// # TOML Format
//
//	[catalog]
//	url = "127.0.0.1:8080"
//	file = "~/shop/products.toml"
//	poll_seconds = 30
//
//	[storage]
//	backend = "file"            # memory, file or postgres
//	dir = "~/.local/share/storefront/state"
//	dsn = "postgres://localhost/storefront"
//
//	[pricing]
//	free_shipping_threshold = 100.0
//	flat_shipping_fee = 9.99
//	tax_rate = 0.08
//
//	[history]
//	recently_viewed = 12
//
//	[log]
//	level = "info"
//	file = "~/.local/share/storefront/storefront.log"
//	format = "text"
//
// Every field is optional. Tilde expansion is performed on paths.
//
// # Environment Overrides
//
//   - STOREFRONT_CATALOG_URL, STOREFRONT_CATALOG_FILE, STOREFRONT_POLL_SECONDS
//   - STOREFRONT_STORAGE_BACKEND, STOREFRONT_STORAGE_DIR, STOREFRONT_STORAGE_DSN
//   - STOREFRONT_LOG_LEVEL, STOREFRONT_LOG_FILE
//
// Missing config files are not an error. Unknown backends, a postgres
// backend without a DSN, invalid pricing and out-of-range history lengths are.
package config
