package pricing

import (
	"net/url"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
)

// lineKeySeparator never appears in an escaped product id.
const lineKeySeparator = "|"

// LineKey derives the cart line identity for a product and selection.
//
// The product id is query-escaped, so an id made of unreserved characters is
// its own key. When options are selected the key continues with the separator
// and the pairs encoded by url.Values, which sorts by name and escapes both
// names and values. Equal selections therefore always produce equal keys and
// no two distinct (id, selection) pairs can collide.
func LineKey(productID string, selected model.SelectedOptions) string {
	key := url.QueryEscape(productID)
	if selected.IsEmpty() {
		return key
	}
	values := make(url.Values, len(selected))
	for name, value := range selected {
		values.Set(name, value)
	}
	return key + lineKeySeparator + values.Encode()
}
