// Package cmd implements the command-line interface of the storefront. It
// provides a hierarchical command structure on top of the storefront libraries.
//
// The package is organized into several subpackages:
//
//   - ids: Commands for the per-seller id allocator (allocate, free, reset, rebuild, ...)
//   - product: Commands for the product catalog (add, list, delete, reset)
//   - review: Commands for product reviews (add, list)
//   - users: Commands for the user directory (list, add, delete, sync)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See storefront -help for a list of all commands.
package cmd
