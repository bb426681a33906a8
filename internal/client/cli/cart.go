package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/avdeenkov/shopsync/internal/client/models"
)

// AddToCart interactively collects a cart line and adds it. Adding the same
// product twice merges quantities instead of duplicating the line.
func (a *App) AddToCart(ctx context.Context) error {
	productID, err := getSimpleText(a.reader, "Product id", os.Stdout)
	if err != nil {
		return err
	}
	if productID == "" {
		printlnFn("Product id is required.")
		return nil
	}

	name, err := getSimpleText(a.reader, "Product name", os.Stdout)
	if err != nil {
		return err
	}

	priceStr, err := getSimpleText(a.reader, "Unit price", os.Stdout)
	if err != nil {
		return err
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		printlnFn("Invalid price:", priceStr)
		return nil
	}

	qtyStr, err := getSimpleText(a.reader, "Quantity (default 1)", os.Stdout)
	if err != nil {
		return err
	}
	qty := 1
	if qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil || qty < 1 {
			printlnFn("Invalid quantity:", qtyStr)
			return nil
		}
	}

	sellerID, err := getSimpleText(a.reader, "Seller id (optional)", os.Stdout)
	if err != nil {
		return err
	}

	a.cart.AddItem(ctx, models.CartLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: price,
		Quantity:  qty,
		SellerID:  sellerID,
	})
	printlnFn("Added.")
	return nil
}

// RemoveFromCart removes a product line. Removing an absent product is a
// silent no-op, matching the store semantics.
func (a *App) RemoveFromCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: remove <productId>")
		return nil
	}
	a.cart.RemoveItem(ctx, args[0])
	printlnFn("Removed.")
	return nil
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
func (a *App) SetQuantity(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: qty <productId> <quantity>")
		return nil
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		printlnFn("Invalid quantity:", args[1])
		return nil
	}
	a.cart.UpdateQuantity(ctx, args[0], qty)
	printlnFn("Updated.")
	return nil
}

// ShowCart prints the cart lines and totals.
func (a *App) ShowCart(ctx context.Context) error {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		printlnFn("Cart is empty.")
		return nil
	}
	for _, l := range lines {
		printlnFn(fmt.Sprintf("%-12s %-24s x%-3d %8.2f", l.ProductID, l.Name, l.Quantity, l.UnitPrice*float64(l.Quantity)))
	}
	printlnFn(fmt.Sprintf("Total: %d item(s), %.2f", lines.TotalItems(), lines.TotalPrice()))
	return nil
}

// ClearCart empties the cart.
func (a *App) ClearCart(ctx context.Context) error {
	a.cart.Clear(ctx)
	printlnFn("Cart cleared.")
	return nil
}

// SyncCart re-runs the load path: authenticated sessions re-pull the server
// cart, anonymous ones re-read the local snapshot.
func (a *App) SyncCart(ctx context.Context) error {
	a.cart.Flush()
	a.cart.Load(ctx)
	return a.ShowCart(ctx)
}
