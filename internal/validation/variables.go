package validation

import (
	"context"
	"fmt"
	"regexp"

	"github.com/connect-labs/ccli/internal/extension"
)

const variableNamePattern = `^[A-Za-z](?:[A-Za-z0-9_\-.]+)*$`

var variableName = regexp.MustCompile(variableNamePattern)

// CheckVariables validates the variables declared by every extension class.
// Classes without a @variables decorator fall back to the descriptor's
// variables section.
func CheckVariables(_ context.Context, _ Config, _ string, vctx Context) Result {
	var items []Item
	for _, kind := range vctx.Classes.Kinds() {
		cls := vctx.Classes[kind]
		loc := cls.Source().Locate("@variables")
		if err := cls.VariablesErr(); err != nil {
			items = append(items, warning(fmt.Sprintf(
				"The variables of *%s* cannot be read statically and have not been validated: %v.",
				cls.Name(), err), cls.File()).at(loc))
			continue
		}
		vars, ok := cls.Variables()
		if !ok && vctx.Descriptor != nil {
			vars = vctx.Descriptor.Variables()
		}
		at := func(msg string) {
			items = append(items, errorItem(msg, cls.File()).at(loc))
		}

		seen := map[string]bool{}
		for _, v := range vars {
			raw, ok := v["name"]
			if !ok {
				at("Invalid variable declaration: the *name* attribute is mandatory.")
				continue
			}
			name := pyStr(raw)
			if seen[name] {
				at(fmt.Sprintf("Duplicate variable name: the variable with name *%s* has already been declared.", name))
			}
			seen[name] = true

			if s, ok := raw.(string); !ok || !variableName.MatchString(s) {
				at(fmt.Sprintf("Invalid variable name: the value *%s* does not match the pattern *%s*.",
					name, variableNamePattern))
			}
			if iv, ok := v["initial_value"]; ok {
				if _, isStr := iv.(string); !isStr {
					at(fmt.Sprintf("Invalid *initial_value* attribute for variable *%s*: must be a non-null string not *%s*.",
						name, extension.TypeName(iv)))
				}
			}
			if sec, ok := v["secure"]; ok {
				if _, isBool := sec.(bool); !isBool {
					at(fmt.Sprintf("Invalid *secure* attribute for variable *%s*: must be a boolean not *%s*.",
						name, extension.TypeName(sec)))
				}
			}
		}
	}
	return Result{Items: items}
}
