// Package sandbox implements an optional Docker-isolated execution
// profile: when a repo opts in (RepoConfig.Sandbox) and the caller
// passes --dangerous, the assistant subprocess runs inside a container
// instead of directly on the host.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/subprocess"
)

// DefaultAllowedDomains is the base network allowlist every sandbox
// profile carries.
var DefaultAllowedDomains = []string{
	"api.anthropic.com",
	"github.com",
	"api.github.com",
}

// AllowedDomains merges the defaults with a repo's extra allowed
// domains (its stack tool's domain, an internal package registry, etc).
func AllowedDomains(extras []string) []string {
	all := make([]string, 0, len(DefaultAllowedDomains)+len(extras))
	all = append(all, DefaultAllowedDomains...)
	all = append(all, extras...)
	return all
}

// envAllowPrefixes are the only env-var name shapes that may cross into
// the container: just what the assistant and host auth need.
var envAllowPrefixes = []string{"ANTHROPIC_", "GH_TOKEN", "GITHUB_TOKEN"}

// FilterEnv returns the subset of env (in "KEY=VALUE" form) whose keys
// match an allowed prefix.
func FilterEnv(env []string) []string {
	var allowed []string
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, prefix := range envAllowPrefixes {
			if strings.HasPrefix(key, prefix) {
				allowed = append(allowed, kv)
				break
			}
		}
	}
	return allowed
}

// Profile configures one sandboxed execution.
type Profile struct {
	ImageTag     string
	Dockerfile   string
	NetworkAllow []string
}

// DefaultDockerfile is the conventional location of a repo's sandbox
// Dockerfile.
const DefaultDockerfile = ".erk/docker/Dockerfile"

// Sandbox builds and runs the assistant subprocess inside a container.
type Sandbox struct {
	Run subprocess.Runner
}

// NewSandbox constructs a Sandbox backed by the given Runner.
func NewSandbox(run subprocess.Runner) *Sandbox {
	return &Sandbox{Run: run}
}

// Build runs `docker build` for profile against contextDir.
func (s *Sandbox) Build(ctx context.Context, profile Profile, contextDir string) error {
	dockerfile := profile.Dockerfile
	if dockerfile == "" {
		dockerfile = DefaultDockerfile
	}
	if contextDir == "" {
		contextDir = "."
	}
	_, err := s.Run.Run(ctx, "", "docker", "build", "-t", profile.ImageTag, "-f", dockerfile, contextDir)
	if err != nil {
		return domainerr.Wrap(domainerr.KindSubprocess, "docker build failed", err)
	}
	return nil
}

// RunAssistant runs the assistant subprocess inside profile's container,
// mounting worktreePath and attaching to the controlling terminal.
func (s *Sandbox) RunAssistant(ctx context.Context, profile Profile, worktreePath string, prompt string) error {
	env := FilterEnv(os.Environ())

	args := []string{
		"run", "--rm", "-it",
		"-v", fmt.Sprintf("%s:/workspace", worktreePath),
		"-w", "/workspace",
	}
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		args = append(args, "-e", key)
	}
	args = append(args, profile.ImageTag, "claude", "-p", prompt)

	if err := s.Run.RunInteractive(ctx, "", env, "docker", args...); err != nil {
		return domainerr.Wrap(domainerr.KindSubprocess, "docker run failed", err)
	}
	return nil
}
