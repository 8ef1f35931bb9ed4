package connect

import (
	"context"
	"fmt"
)

// EventDefinition describes an event type extensions can subscribe to.
type EventDefinition struct {
	Type           string   `json:"type"`
	Group          string   `json:"group,omitempty"`
	ObjectStatuses []string `json:"object_statuses"`
}

// EventDefinitions lists every event type known to the platform, reading
// all pages of the collection.
func (c *Client) EventDefinitions(ctx context.Context) ([]EventDefinition, error) {
	defs, err := listAll[EventDefinition](ctx, c, "/devops/event-definitions")
	if err != nil {
		return nil, fmt.Errorf("listing event definitions: %w", err)
	}
	return defs, nil
}
