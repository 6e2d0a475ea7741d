// Package cart holds the buyers' shopping carts.
//
// Each cart is a JSON list of lines stored under carts/<owner> in a
// store.IStore. Adding checks the catalog: the product must exist and the
// line may not exceed its stock. A cart holds at most 20 units.
//
// Deleted products are removed from all carts by registering DropProducts as
// a catalog delete hook:
//
//	products.OnDelete(func(ids []string) error {
//		_, err := cart.DropProducts(kv, ids)
//		return err
//	})
package cart
