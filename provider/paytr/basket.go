package paytr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ecommkit/payflow/provider"
)

// encodeBasket converts basket items into PayTR's user_basket format: a
// JSON array of [name, price, quantity] triples, base64-encoded. Prices go
// on the wire as two-decimal strings (minor units / 100), unlike the
// integer minor units sent in payment_amount.
// An empty basket is replaced with a single placeholder item.
func encodeBasket(items []provider.BasketItem) (string, error) {
	basket := make([][]any, 0, len(items))

	if len(items) == 0 {
		basket = append(basket, []any{"placeholder", "1.00", 1})
	}

	for _, item := range items {
		if err := provider.ValidateBasketItem(item); err != nil {
			return "", err
		}

		name := item.Name
		if runes := []rune(name); len(runes) > maxItemNameLen {
			name = string(runes[:maxItemNameLen])
		}

		basket = append(basket, []any{name, formatPrice(item.Price), item.Quantity})
	}

	encoded, err := json.Marshal(basket)
	if err != nil {
		return "", fmt.Errorf("paytr: failed to encode basket: %w", err)
	}

	return base64.StdEncoding.EncodeToString(encoded), nil
}

// formatPrice renders minor currency units as a two-decimal string,
// e.g. 10000 -> "100.00".
func formatPrice(minorUnits int64) string {
	return fmt.Sprintf("%d.%02d", minorUnits/100, minorUnits%100)
}
