package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/connect-labs/ccli/internal/extension"
)

const uiHelp = "The extension descriptor *extension.json* must contain information " +
	"about static files. Please use *ui* keyword, to define an item " +
	"use *label* for name and *url* to specify absolute path to file within " +
	"static root folder. For more information, look at example: " +
	"https://github.com/cloudblue/eaas-e2e-ma-mock/blob/master/e2e/extension.json."

// CheckWebApp validates the web application class and the static files its
// descriptor references.
func CheckWebApp(_ context.Context, _ Config, _ string, vctx Context) Result {
	cls, ok := vctx.Classes.Get(extension.KindWebApp)
	if !ok {
		return Result{}
	}
	file := cls.File()
	stop := func(msg string) Result {
		return Result{Items: []Item{errorItem(msg, file)}, Stop: true}
	}

	if !strings.HasPrefix(strings.TrimSpace(cls.Source().Text()), "@web_app(router)") {
		return stop("The Web app extension class must be wrapped in *@web_app(router)*.")
	}
	if !hasRouterMethod(cls) {
		return stop("The Web app extension class must contain at least one router " +
			`implementation function wrapped in *@router.your_method("/your_path")*.`)
	}

	var ui map[string]any
	if vctx.Descriptor != nil {
		ui, ok = vctx.Descriptor.UI()
	}
	if !ok || ui == nil {
		return stop(uiHelp)
	}

	keys := make([]string, 0, len(ui))
	for k := range ui {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	stack := make([]any, 0, len(keys))
	for _, k := range keys {
		stack = append(stack, ui[k])
	}

	root := extension.Dir(cls)
	var missed []string
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		item, _ := node.(map[string]any)
		rawURL, ok := item["url"]
		if !ok {
			return stop(fmt.Sprintf("The extension descriptor *extension.json* contains incorrect "+
				"ui item *%s*, url is not presented.", pyStr(item["label"])))
		}
		url := pyStr(rawURL)
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(strings.Trim(url, "/")))); err != nil {
			missed = append(missed, url)
		}
		if children, ok := item["children"].([]any); ok {
			stack = append(stack, children...)
		}
	}

	if len(missed) > 0 {
		return stop(fmt.Sprintf("The extension descriptor *extension.json* contains missing "+
			"static files: %s.", pyList(missed)))
	}
	return Result{}
}

func hasRouterMethod(cls extension.Class) bool {
	for _, m := range cls.Methods() {
		if strings.HasPrefix(strings.TrimSpace(m.Source.Text()), "@router.") {
			return true
		}
	}
	return false
}
