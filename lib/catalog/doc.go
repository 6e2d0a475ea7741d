// Package catalog manages the product listings of the storefront.
//
// Product ids come from an idalloc.IAllocator with one namespace per seller
// (the seller's email). Deleting a product frees its id so that the seller's
// next product reuses the smallest free number. When a seller's last product
// is deleted, the seller's namespace is reset and numbering starts at 1 again.
//
// The prefix of a seller is fixed with the first product: the initials of the
// seller's name, extended with letters if another seller already holds them
// ("Jane Doe" -> JD, "John Dale" -> JDA). Product ids are unique across the
// whole catalog, so ByID, Delete and the review lists can key on them.
//
// The product list is stored as one JSON document under ProductsKey.
package catalog
