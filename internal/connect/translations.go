package connect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Attribute is one localized key of a translation.
type Attribute struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Comment string `json:"comment"`
}

// BulkUpdateAttributes replaces the given attributes of a translation in one call.
func (c *Client) BulkUpdateAttributes(ctx context.Context, translationID string, attrs []Attribute) error {
	path := "/localization/translations/" + url.PathEscape(translationID) + "/attributes"
	if err := c.do(ctx, http.MethodPut, path, attrs, nil); err != nil {
		return fmt.Errorf("updating attributes of %s: %w", translationID, err)
	}
	return nil
}
