package validation

import (
	"context"
	"fmt"

	"github.com/connect-labs/ccli/internal/extension"
)

// CheckSchedulables validates the signature of @schedulable methods.
func CheckSchedulables(_ context.Context, _ Config, _ string, vctx Context) Result {
	cls, ok := vctx.Classes.Get(extension.KindExtension)
	if !ok {
		return Result{}
	}
	var items []Item
	for _, s := range cls.Schedulables() {
		method, _ := cls.Method(s.Method)
		if len(method.Params) == handlerArity {
			continue
		}
		items = append(items, errorItem(fmt.Sprintf(
			"The schedulable method *%s* has an invalid signature: *%s*", s.Method, method.Signature()),
			cls.File()).at(locateSignature(method)))
	}
	return Result{Items: items}
}
