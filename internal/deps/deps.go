// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deps reports whether the external tools a scan relies on can be
// found.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/authorcheck/pkg/types"
)

// Requirement names one external binary.
type Requirement struct {
	Name        string `json:"name" yaml:"name"`
	Command     string `json:"command" yaml:"command"`
	Description string `json:"description" yaml:"description"`
	Optional    bool   `json:"optional" yaml:"optional"`
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement `yaml:",inline"`
	Available   bool   `json:"available" yaml:"available"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ForRender returns the binaries needed by cfg. With the native backend the
// rasterizer itself is required and the container runtimes are optional;
// with the container backend it is the other way round.
func ForRender(cfg types.RenderConfig) []Requirement {
	container := cfg.Backend == types.BackendContainer
	return []Requirement{
		{
			Name:        "pdftoppm",
			Command:     cfg.Binary,
			Description: "renders the first page of each PDF (poppler-utils)",
			Optional:    container,
		},
		{
			Name:        "docker",
			Command:     "docker",
			Description: "runs " + cfg.Image + " for the container backend (build it with `mage image`)",
			Optional:    true,
		},
		{
			Name:        "podman",
			Command:     "podman",
			Description: "alternative to docker for the container backend",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}

		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Missing returns the required (non-optional) entries that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
