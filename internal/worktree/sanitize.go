// Package worktree manages the lifecycle of per-feature git worktrees:
// create, delete, rename, checkout, and consolidate the working
// directories that give erk its name.
package worktree

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erkhq/erk/internal/domainerr"
)

const maxNameLength = 31

var nonSlugChars = regexp.MustCompile(`[^a-z0-9\-/]`)
var consecutiveDashes = regexp.MustCompile(`-{2,}`)

var reservedNames = map[string]bool{
	".":    true,
	"..":   true,
	"root": true,
	"":     true,
}

// SanitizeName derives a worktree_name from a candidate title: lowercase;
// replace "_", "." and all non-[a-z0-9-/] with "-"; collapse consecutive
// "-"; strip leading/trailing "-/"; truncate to 31; strip trailing "-";
// fallback to "work" if empty.
// "." is deliberately not preserved here even though ValidateName still
// accepts it in names supplied verbatim via --name: "Add OAuth 2.0 +
// JWT!!!" must sanitize to "add-oauth-2-0-jwt", not "add-oauth-2.0-jwt".
func SanitizeName(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = consecutiveDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-/")
	if len(s) > maxNameLength {
		s = s[:maxNameLength]
	}
	s = strings.TrimRight(s, "-")
	if s == "" {
		return "work"
	}
	return s
}

// ValidateName rejects names illegal for worktree mode: name must not
// be ".", "..", "root", empty, must not start with "/", must not
// contain "/".
func ValidateName(name string) error {
	if reservedNames[name] {
		return domainerr.New(domainerr.KindUserInput, fmt.Sprintf("worktree name %q is reserved", name))
	}
	if strings.HasPrefix(name, "/") {
		return domainerr.New(domainerr.KindUserInput, "worktree name must not start with '/'").WithDetails(name)
	}
	if strings.Contains(name, "/") {
		return domainerr.New(domainerr.KindUserInput, "worktree name must not contain '/'").WithDetails(name)
	}
	if len(name) > maxNameLength {
		return domainerr.New(domainerr.KindUserInput, "worktree name exceeds 31 characters").WithDetails(name)
	}
	return nil
}
