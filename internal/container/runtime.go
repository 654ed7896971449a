// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs external command-line tools, either straight from
// PATH or inside a docker/podman image. The page rasterizer is invoked
// through a Runner so it can run natively or containerized, and so tests can
// replace process execution entirely.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes a single tool that reads stdin and writes stdout.
type Runner interface {
	// Name describes the tool for logs and dependency reports.
	Name() string

	// Available reports whether the tool can be run at all.
	Available() bool

	// Exec runs the tool with args, piping stdin and stdout.
	Exec(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error
}

// Runtime is a container engine able to run a one-shot container.
type Runtime interface {
	// Name is the engine binary, "docker" or "podman".
	Name() string

	// Available is true when the binary is on PATH and its daemon answers.
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run starts a throwaway container of image running args, with stdin
	// attached.
	Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor is the slice of os/exec the package needs; tests fake it.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// RunPiped runs name and folds its stderr into the returned error.
func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

var defaultExec executor = osExecutor{}

// Tool runs a binary found on PATH.
type Tool struct {
	bin  string
	exec executor
}

// NewTool returns a Runner for the named binary.
func NewTool(bin string) *Tool {
	return &Tool{bin: bin, exec: defaultExec}
}

func (t *Tool) Name() string { return t.bin }

func (t *Tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *Tool) Exec(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if err := t.exec.RunPiped(ctx, t.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s: %w", t.bin, err)
	}
	return nil
}

// engine is a Runtime backed by a docker-compatible CLI. Engines differ only
// in their binary and in how they test for a local image.
type engine struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available() bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(e.bin, "info") == nil
}

func (e *engine) ImageExists(image string) error {
	check := append(append([]string{}, e.imageCheck...), image)
	if err := e.exec.RunSilent(e.bin, check...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

func (e *engine) Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := append([]string{"run", "--rm", "-i", image}, args...)
	if err := e.exec.RunPiped(ctx, e.bin, full, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", e.bin, image, err)
	}
	return nil
}

func newDockerRuntime(x executor) *engine {
	return &engine{bin: "docker", imageCheck: []string{"image", "inspect"}, exec: x}
}

func newPodmanRuntime(x executor) *engine {
	return &engine{bin: "podman", imageCheck: []string{"image", "exists"}, exec: x}
}

// DetectRuntime returns docker when it works and podman otherwise.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(x executor) (Runtime, error) {
	candidates := []*engine{newDockerRuntime(x), newPodmanRuntime(x)}
	for _, c := range candidates {
		if c.Available() {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational",
		candidates[0].bin, candidates[1].bin)
}

// imageTool runs a binary inside a container image.
type imageTool struct {
	rt    Runtime
	image string
	bin   string
}

// InImage returns a Runner that executes bin inside image using rt.
func InImage(rt Runtime, image, bin string) Runner {
	return &imageTool{rt: rt, image: image, bin: bin}
}

func (t *imageTool) Name() string {
	return fmt.Sprintf("%s in %s (%s)", t.bin, t.image, t.rt.Name())
}

func (t *imageTool) Available() bool {
	return t.rt.Available() && t.rt.ImageExists(t.image) == nil
}

func (t *imageTool) Exec(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	return t.rt.Run(ctx, t.image, append([]string{t.bin}, args...), stdin, stdout)
}
