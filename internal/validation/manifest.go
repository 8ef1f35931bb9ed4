package validation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/connect-labs/ccli/internal/extension"
	"github.com/connect-labs/ccli/internal/project"
	"go.uber.org/zap"
)

const (
	coreDependency   = "connect-eaas-core"
	runnerDependency = "connect-extension-runner"
)

// deprecatedResponses maps response classes to their replacement.
var deprecatedResponses = []struct{ name, replacement string }{
	{"CustomEventResponse", "InteractiveResponse"},
	{"ProcessingResponse", "BackgroundResponse"},
	{"ProductActionResponse", "InteractiveResponse"},
	{"ValidationResponse", "InteractiveResponse"},
}

const invalidDeclaration = `Invalid extension declaration in *[tool.poetry.plugins."connect.eaas.ext"]*: ` +
	`The extension must be declared as: *"extension" = "your_package.extension:YourExtension"* ` +
	`for Fulfillment automation or Hub integration. For Multi account installation must be ` +
	`declared at least one the following: *"extension" = "your_package.events:YourEventsExtension"*, ` +
	`*"webapp" = "your_package.webapp:YourWebAppExtension"*, ` +
	`*"anvil" = "your_package.anvil:YourAnvilExtension"*.`

// CheckManifest reads pyproject.toml, checks the SDK dependency and loads the
// declared extension classes.
func CheckManifest(_ context.Context, cfg Config, projectDir string, _ Context) Result {
	log := cfg.logger()
	file := project.ManifestPath(projectDir)

	manifest, err := project.LoadManifest(projectDir)
	if errors.Is(err, project.ErrManifestNotFound) {
		return Result{Items: []Item{errorItem(fmt.Sprintf(
			"The directory *%s* does not look like an extension project directory, "+
				"the file *%s* is not present.", projectDir, project.ManifestFile), file)}, Stop: true}
	}
	if err != nil {
		log.Debug("cannot load manifest", zap.Error(err))
		return Result{Items: []Item{errorItem(fmt.Sprintf(
			"The extension project descriptor file *%s* is not valid.", project.ManifestFile), file)}, Stop: true}
	}

	var items []Item
	if manifest.HasDependency(runnerDependency) {
		items = append(items, warning(fmt.Sprintf(
			"Extensions must depend on *%s* library not *%s*.", coreDependency, runnerDependency), file))
	} else if !manifest.HasDependency(coreDependency) {
		items = append(items, errorItem(fmt.Sprintf(
			"No dependency on *%s* has been found.", coreDependency), file))
	}

	declared, ok := manifest.EntryPoints(project.ExtensionEntryPoints)
	if !ok {
		items = append(items, errorItem("No extension declaration has been found."+
			`The extension must be declared in the *[tool.poetry.plugins."connect.eaas.ext"]* section.`, file))
		return Result{Items: items, Stop: true}
	}

	for _, key := range slices.Sorted(maps.Keys(declared)) {
		if _, ok := extension.ParseKind(key); !ok {
			items = append(items, warning(fmt.Sprintf(
				"The extension declaration *%s* is not supported and has been ignored, supported declarations are: %s.",
				key, supportedKinds()), file))
		}
	}

	classes := extension.Registry{}
	for _, kind := range extension.AllKinds() {
		raw, ok := declared[string(kind)]
		if !ok {
			continue
		}
		ref := fmt.Sprint(raw)

		cls, err := loadClass(cfg, projectDir, raw)
		if err != nil {
			items = append(items, errorItem(fmt.Sprintf(
				"The extension class *%s* cannot be loaded: %v.", ref, err), file))
			return Result{Items: items, Stop: true}
		}
		log.Debug("extension class loaded", zap.String("kind", string(kind)), zap.String("ref", ref))

		names := cls.ModuleNames()
		for _, dep := range deprecatedResponses {
			if !slices.Contains(names, dep.name) {
				continue
			}
			items = append(items, warning(fmt.Sprintf(
				"The response class *%s* has been deprecated in favor of *%s*.", dep.name, dep.replacement),
				cls.File()).at(cls.ModuleSource().Locate(dep.name)))
		}
		classes[kind] = cls
	}

	if len(classes) == 0 {
		items = append(items, errorItem(invalidDeclaration, file))
		return Result{Items: items, Stop: true}
	}
	return Result{Items: items, Context: &Context{Classes: classes}}
}

func supportedKinds() string {
	kinds := extension.AllKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = "*" + string(k) + "*"
	}
	return strings.Join(names, ", ")
}

func loadClass(cfg Config, projectDir string, raw any) (extension.Class, error) {
	ref, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: declaration must be a string", extension.ErrInvalidReference)
	}
	if cfg.Loader == nil {
		return nil, errors.New("no extension loader configured")
	}
	return cfg.Loader.Load(projectDir, ref)
}
