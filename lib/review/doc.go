// Package review stores customer reviews per product.
//
// Only logged in users may write reviews. Review ids are xids, so they sort by
// creation time.
package review
