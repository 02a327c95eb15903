package host

import (
	"context"
	"os"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/subprocess"
)

// ResolveToken finds a host auth token without ever persisting it.
// Order: GH_TOKEN, GITHUB_TOKEN, then `gh auth token`.
func ResolveToken(ctx context.Context, run subprocess.Runner) (string, error) {
	if t := os.Getenv("GH_TOKEN"); t != "" {
		return t, nil
	}
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t, nil
	}
	res, err := run.Run(ctx, "", "gh", "auth", "token")
	if err != nil {
		return "", domainerr.Wrap(domainerr.KindEnvironment,
			"no host auth token: set GH_TOKEN/GITHUB_TOKEN or run `gh auth login`", err)
	}
	token := strings.TrimSpace(res.Stdout)
	if token == "" {
		return "", domainerr.New(domainerr.KindEnvironment, "gh auth token returned empty output")
	}
	return token, nil
}

// NewClient builds an authenticated github.Client from a resolved token.
func NewClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}
