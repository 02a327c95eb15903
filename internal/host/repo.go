package host

import (
	"strings"

	"github.com/erkhq/erk/internal/domainerr"
)

// ParseRepoSlug extracts a Repo (owner/name) from a git remote URL.
// Supports HTTPS (https://github.com/o/r.git) and SSH
// (git@github.com:o/r.git).
func ParseRepoSlug(remoteURL string) (Repo, error) {
	url := strings.TrimSpace(remoteURL)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	var path string
	switch {
	case strings.HasPrefix(url, "git@"):
		_, after, ok := strings.Cut(url, ":")
		if !ok {
			return Repo{}, domainerr.New(domainerr.KindEnvironment, "invalid SSH remote URL: "+remoteURL)
		}
		path = after
	case strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://"):
		parts := strings.SplitN(url, "//", 2)
		if len(parts) < 2 {
			return Repo{}, domainerr.New(domainerr.KindEnvironment, "invalid HTTPS remote URL: "+remoteURL)
		}
		_, after, ok := strings.Cut(parts[1], "/")
		if !ok {
			return Repo{}, domainerr.New(domainerr.KindEnvironment, "invalid HTTPS remote URL: "+remoteURL)
		}
		path = after
	default:
		return Repo{}, domainerr.New(domainerr.KindEnvironment, "unsupported remote URL format: "+remoteURL)
	}

	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, domainerr.New(domainerr.KindEnvironment, "cannot extract owner/repo from: "+remoteURL)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}
