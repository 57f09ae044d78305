// Package templates embeds the documented starter pipelines that the
// `init`/`templates` CLI subcommands serve (spec §6; catalog family
// fixed by SPEC_FULL §4.1 LoadTemplate). Grounded on internal/config's
// Workflow/WorkflowStep shape as the template content's target schema,
// via internal/yamlio; the embedding mechanism itself follows Go's
// embed.FS, since no example repo ships static config templates inside
// its own binary.
package templates

import (
	"embed"
	"fmt"
)

//go:embed data/*.yaml
var data embed.FS

// Info names one template and its one-line description, in catalog order.
type Info struct {
	Name        string
	Description string
}

var catalog = []Info{
	{Name: "innosetup", Description: "Compile a Windows installer with Inno Setup (ISCC)."},
	{Name: "dotnet", Description: "Restore, build, and test a .NET solution."},
	{Name: "security", Description: "Run static analysis and a dependency vulnerability audit."},
	{Name: "twincat", Description: "Build a TwinCAT PLC solution and archive the boot project."},
	{Name: "custom", Description: "Minimal starting point for a hand-written pipeline."},
}

// List returns every template's name and description, in catalog order.
func List() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns just the template names, in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, info := range catalog {
		names[i] = info.Name
	}
	return names
}

// Get returns the raw YAML text for name, or an error if name is not one
// of the catalog's templates.
func Get(name string) ([]byte, error) {
	for _, info := range catalog {
		if info.Name == name {
			return data.ReadFile("data/" + name + ".yaml")
		}
	}
	return nil, fmt.Errorf("unknown template %q, want one of %v", name, Names())
}
