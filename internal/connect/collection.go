package connect

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// PageSize is the number of items requested per page of a collection.
const PageSize = 100

// listAll reads every page of the collection at path. Pages are requested
// with limit and offset until the total announced by the Content-Range
// header has been read, or a short page is returned when the header is
// missing.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for offset := 0; ; {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(PageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page []T
		header, err := c.send(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		offset += len(page)

		total, ok := contentRangeTotal(header.Get("Content-Range"))
		c.log.Debug("collection page", zap.String("path", path), zap.Int("read", offset), zap.Int("total", total))
		switch {
		case len(page) == 0:
			return all, nil
		case ok && offset >= total:
			return all, nil
		case !ok && len(page) < PageSize:
			return all, nil
		}
	}
}

// contentRangeTotal extracts the total from a header such as
// "items 0-99/250".
func contentRangeTotal(h string) (int, bool) {
	if h == "" {
		return 0, false
	}
	_, total, ok := strings.Cut(h, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return 0, false
	}
	return n, true
}
