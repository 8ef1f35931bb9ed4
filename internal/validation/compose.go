package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const (
	// ComposeFile is the service definition expected at the project root.
	ComposeFile = "docker-compose.yml"
	runnerImage = "cloudblueconnect/connect-extension-runner"
)

type composeService struct {
	Image *string `yaml:"image"`
}

// CheckCompose verifies that every service runs the latest runner image.
// Problems in the compose file never stop the run.
func CheckCompose(ctx context.Context, cfg Config, projectDir string, _ Context) Result {
	file := filepath.Join(projectDir, ComposeFile)

	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return Result{Items: []Item{warning(fmt.Sprintf(
			"The directory *%s* does not look like an extension project directory, "+
				"the file *%s* is not present.", projectDir, ComposeFile), file)}}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return Result{Items: []Item{errorItem(fmt.Sprintf("The file *%s* cannot be read: %v.", ComposeFile, err), file)}}
	}
	var doc struct {
		Services yaml.Node `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{Items: []Item{errorItem(fmt.Sprintf("The file *%s* is not valid.", ComposeFile), file)}}
	}
	if doc.Services.Kind != yaml.MappingNode || len(doc.Services.Content) == 0 {
		return Result{}
	}

	if cfg.Runner == nil {
		return Result{Items: []Item{errorItem("Cannot resolve the latest runner version: no resolver configured.", file)}}
	}
	version, err := cfg.Runner.LatestRunnerVersion(ctx)
	if err != nil {
		return Result{Items: []Item{errorItem(fmt.Sprintf("Cannot resolve the latest runner version: %v.", err), file)}}
	}
	expected := runnerImage + ":" + version

	var items []Item
	for i := 0; i+1 < len(doc.Services.Content); i += 2 {
		name := doc.Services.Content[i].Value
		var svc composeService
		if err := doc.Services.Content[i+1].Decode(&svc); err != nil {
			items = append(items, errorItem(fmt.Sprintf("Invalid definition for service *%s*: %v.", name, err), file))
			continue
		}
		image := "None"
		if svc.Image != nil {
			image = *svc.Image
		}
		if image != expected {
			items = append(items, errorItem(fmt.Sprintf(
				"Invalid image for service *%s*: expected *%s* got *%s*.", name, expected, image), file))
		}
	}
	return Result{Items: items}
}
