package validation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/connect-labs/ccli/internal/connect"
	"github.com/connect-labs/ccli/internal/extension"
)

// handlerArity is the number of parameters of a handler: self and the payload.
const handlerArity = 2

// CheckEvents validates the @event handlers of the "extension" class against
// the platform's event definitions.
func CheckEvents(ctx context.Context, cfg Config, _ string, vctx Context) Result {
	cls, ok := vctx.Classes.Get(extension.KindExtension)
	if !ok || len(cls.Events()) == 0 {
		return Result{}
	}
	if cfg.Events == nil {
		return Result{Items: []Item{errorItem("Cannot retrieve the event definitions: no API client configured.", cls.File())}}
	}
	list, err := cfg.Events.EventDefinitions(ctx)
	if err != nil {
		return Result{Items: []Item{errorItem(fmt.Sprintf("Cannot retrieve the event definitions: %v.", err), cls.File())}}
	}
	defs := make(map[string]connect.EventDefinition, len(list))
	for _, d := range list {
		defs[d.Type] = d
	}

	var items []Item
	for _, ev := range cls.Events() {
		method, _ := cls.Method(ev.Method)
		loc := method.Source.Locate("@event")

		def, ok := defs[ev.EventType]
		if !ok {
			items = append(items, errorItem(fmt.Sprintf(
				"The event type *%s* is not valid.", ev.EventType), cls.File()).at(loc))
			continue
		}

		if invalid := invalidStatuses(ev.Statuses, def.ObjectStatuses); len(invalid) > 0 {
			items = append(items, errorItem(fmt.Sprintf(
				"The status/es *%s* are invalid for the event *%s*.",
				strings.Join(invalid, ", "), ev.EventType), cls.File()).at(loc))
		}

		if len(method.Params) != handlerArity {
			sig := method.Signature()
			items = append(items, errorItem(fmt.Sprintf(
				"The handler for the event *%s* has an invalid signature: *%s*", ev.EventType, sig),
				cls.File()).at(locateSignature(method)))
		}
	}
	return Result{Items: items}
}

// invalidStatuses returns the declared statuses not in allowed, in
// declaration order. When allowed is empty every declared status is invalid.
func invalidStatuses(declared, allowed []string) []string {
	var invalid []string
	for _, s := range declared {
		if !slices.Contains(allowed, s) && !slices.Contains(invalid, s) {
			invalid = append(invalid, s)
		}
	}
	return invalid
}

// locateSignature points at the rendered signature, or at the def line when
// the source spells it differently.
func locateSignature(m extension.Method) extension.Location {
	if loc := m.Source.Locate(m.Signature()); loc.LineNo > 0 {
		return loc
	}
	return m.Source.Locate("def " + m.Name)
}
