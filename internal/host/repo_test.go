package host

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRepoSlugHTTPS(t *testing.T) {
	repo, err := ParseRepoSlug("https://github.com/acme/widgets.git")
	require.NoError(t, err)
	require.Equal(t, Repo{Owner: "acme", Name: "widgets"}, repo)
}

func TestParseRepoSlugSSH(t *testing.T) {
	repo, err := ParseRepoSlug("git@github.com:acme/widgets.git")
	require.NoError(t, err)
	require.Equal(t, Repo{Owner: "acme", Name: "widgets"}, repo)
}

func TestParseRepoSlugRejectsUnsupportedScheme(t *testing.T) {
	_, err := ParseRepoSlug("ftp://example.com/acme/widgets")
	require.Error(t, err)
}
