package validation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/connect-labs/ccli/internal/extension"
	"go.uber.org/zap"
)

// deprecatedSections maps descriptor sections to the decorator replacing them.
var deprecatedSections = []struct{ section, decorator string }{
	{"variables", "variables"},
	{"capabilities", "capabilities"},
	{"schedulables", "event"},
}

// CheckExtensionClass verifies each class derives from the SDK base of its
// kind and loads the descriptor that sits next to the first class.
func CheckExtensionClass(_ context.Context, cfg Config, _ string, vctx Context) Result {
	log := cfg.logger()
	var (
		items   []Item
		descDir string
	)
	for _, kind := range vctx.Classes.Kinds() {
		cls := vctx.Classes[kind]
		if !kind.Accepts(cls) {
			items = append(items, errorItem(fmt.Sprintf(
				"The extension class *%s* is not a subclass of *%s*.", cls.Name(), kind.BaseName()), cls.File()))
			return Result{Items: items, Stop: true}
		}
		if descDir == "" {
			descDir = extension.Dir(cls)
		}
	}
	if descDir == "" {
		return Result{}
	}

	file := filepath.Join(descDir, extension.DescriptorFile)
	desc, err := extension.LoadDescriptor(descDir)
	switch {
	case errors.Is(err, extension.ErrInvalidDescriptor):
		items = append(items, errorItem(fmt.Sprintf(
			"The extension descriptor *%s* is not valid: %v.", extension.DescriptorFile, err), file))
		return Result{Items: items, Stop: true}
	case err != nil:
		log.Debug("cannot load descriptor", zap.Error(err))
		items = append(items, errorItem(fmt.Sprintf(
			"The extension descriptor *%s* cannot be loaded.", extension.DescriptorFile), file))
		return Result{Items: items, Stop: true}
	}

	issues, err := extension.ValidateDescriptor(desc)
	if err != nil {
		log.Warn("descriptor schema unavailable", zap.Error(err))
	}
	for _, issue := range issues {
		items = append(items, warning(fmt.Sprintf(
			"The extension descriptor *%s* has an unexpected structure: %s.", extension.DescriptorFile, issue), file))
	}

	for _, dep := range deprecatedSections {
		if desc.Has(dep.section) {
			items = append(items, warning(fmt.Sprintf(
				"Extension %s must be declared using the *connect.eaas.core.decorators.%s* decorator.",
				dep.section, dep.decorator), file))
		}
	}
	return Result{Items: items, Context: &Context{Descriptor: desc}}
}
