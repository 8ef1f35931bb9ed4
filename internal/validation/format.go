package validation

import (
	"fmt"
	"strings"
)

// pyStr renders a decoded value the way it is shown in messages, with a
// missing value printed as None.
func pyStr(v any) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprint(v)
}

// pyList renders strings as a bracketed, quoted list: ['a', 'b'].
func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
