package cart

import "context"

// Backfill fills CategoryID (and a missing discount) for lines the cart
// response left incomplete, using one product lookup per distinct product.
//
// It runs at most once per cart snapshot: the products-loaded flag is set when
// it finishes, and a second caller arriving while it runs returns at once.
// If a Load replaces the snapshot mid-flight, the fetched details are applied
// to the new snapshot and only the products still missing are fetched.
// Lookup failures are logged and leave the affected lines unenriched.
func (c *Controller) Backfill(ctx context.Context) error {
	if c.deps.Catalog == nil {
		return nil
	}

	c.mu.Lock()
	if !c.loaded || c.productsLoaded || c.backfilling {
		c.mu.Unlock()
		return nil
	}
	c.backfilling = true
	c.mu.Unlock()

	fetched := make(map[string]ProductDetail)
	tried := make(map[string]bool)

	for {
		c.mu.Lock()
		gen := c.generation
		pending := c.pendingProductsLocked(tried)
		needCategories := !c.categoriesLoaded
		c.mu.Unlock()

		var categories []Category
		gotCategories := false
		if needCategories {
			var err error
			if categories, err = c.deps.Catalog.Categories(ctx); err != nil {
				c.logger.Warn("fetch categories failed", "error", err)
			} else {
				gotCategories = true
			}
		}

		for _, pid := range pending {
			if ctx.Err() != nil {
				break
			}
			tried[pid] = true
			detail, err := c.deps.Catalog.Product(ctx, pid)
			if err != nil {
				c.logger.Warn("fetch product failed", "product_id", pid, "error", err)
				continue
			}
			fetched[pid] = detail
		}

		c.mu.Lock()
		if gotCategories {
			for _, cat := range categories {
				c.categories[cat.ID] = cat.Name
			}
			c.categoriesLoaded = true
		}
		c.applyDetailsLocked(fetched)
		if gen == c.generation || ctx.Err() != nil {
			c.productsLoaded = gen == c.generation
			c.backfilling = false
			c.mu.Unlock()
			c.logger.Debug("backfill finished", "products", len(fetched))
			return nil
		}
		c.mu.Unlock()
	}
}

// pendingProductsLocked lists distinct product ids whose lines lack a
// category and that were not tried yet in this backfill run.
func (c *Controller) pendingProductsLocked(tried map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range c.items {
		pid := it.ProductID
		if it.CategoryID != "" || pid == "" || seen[pid] || tried[pid] {
			continue
		}
		seen[pid] = true
		out = append(out, pid)
	}
	return out
}

func (c *Controller) applyDetailsLocked(details map[string]ProductDetail) {
	for i := range c.items {
		d, ok := details[c.items[i].ProductID]
		if !ok {
			continue
		}
		if c.items[i].CategoryID == "" {
			c.items[i].CategoryID = d.CategoryID
		}
		if !c.items[i].DiscountPercentage.IsPositive() && d.DiscountPercentage.IsPositive() {
			c.items[i].DiscountPercentage = d.DiscountPercentage
			c.items[i].TotalPrice = c.items[i].LineSubtotal()
		}
	}
}
