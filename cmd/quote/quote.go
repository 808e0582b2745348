package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/sheet"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/ikkim/cart-backend/pkg/pricing"
)

type quoteResult struct {
	Added   int
	Skipped int
	Cart    *service.CartView
}

// quoteWorkbook adds every valid row of the workbook to the cart and
// prints the summary. Rows the cart would reject are skipped, not fatal.
func quoteWorkbook(ctx context.Context, cartService service.CartService, r io.Reader, out io.Writer) (*quoteResult, error) {
	rows, rowErrors, err := sheet.ReadItems(r)
	if err != nil {
		return nil, err
	}

	result := &quoteResult{Skipped: len(rowErrors)}
	for _, rowErr := range rowErrors {
		logger.Warn("Skipping unreadable row", map[string]interface{}{
			"line":   rowErr.Line,
			"reason": rowErr.Reason,
		})
	}

	for _, row := range rows {
		if !pricing.IsValidQuantity(row.Quantity) {
			logger.Warn("Skipping row with invalid quantity", map[string]interface{}{
				"line":     row.Line,
				"quantity": row.Quantity,
			})
			result.Skipped++
			continue
		}

		item, err := cartService.AddItem(ctx, row.Name, row.Price)
		if err != nil {
			logger.Warn("Skipping rejected row", map[string]interface{}{
				"line":  row.Line,
				"error": err.Error(),
			})
			result.Skipped++
			continue
		}

		if row.Quantity != 1 {
			if _, err := cartService.UpdateQuantity(ctx, item.ID, row.Quantity); err != nil {
				logger.Warn("Skipping row with invalid quantity", map[string]interface{}{
					"line":  row.Line,
					"error": err.Error(),
				})
				if err := cartService.RemoveItem(ctx, item.ID); err != nil {
					return nil, err
				}
				result.Skipped++
				continue
			}
		}
		result.Added++
	}

	view, err := cartService.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	result.Cart = view

	printQuote(out, result)
	return result, nil
}

func printQuote(out io.Writer, result *quoteResult) {
	fmt.Fprintf(out, "Items: %d (skipped rows: %d)\n", result.Added, result.Skipped)

	for _, line := range result.Cart.Items {
		fmt.Fprintf(out, "  %-30s %10s x %-6d %12s\n", line.Name, line.FormattedPrice, line.Quantity, line.FormattedItemTotal)
	}

	s := result.Cart.Summary
	if s == nil {
		fmt.Fprintln(out, "Cart is empty")
		return
	}
	fmt.Fprintf(out, "Subtotal: %s\n", s.Formatted.Subtotal)
	fmt.Fprintf(out, "Discount: %s\n", s.Formatted.Discount)
	fmt.Fprintf(out, "Tax: %s\n", s.Formatted.Tax)
	fmt.Fprintf(out, "Total: %s\n", s.Formatted.Total)
}
