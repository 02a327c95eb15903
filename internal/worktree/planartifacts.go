package worktree

import (
	"fmt"
	"path/filepath"

	"github.com/erkhq/erk/internal/domainerr"
	"github.com/erkhq/erk/internal/erkcontext"
)

// writePlanArtifacts materializes .plan/plan.md and .plan/progress.md
// on worktree creation from a plan. progress.md carries YAML front
// matter completed_steps=0, total_steps=<count>.
func writePlanArtifacts(fs erkcontext.FS, worktreePath, planBody string, totalSteps int) error {
	planDir := filepath.Join(worktreePath, ".plan")
	if err := fs.MkdirAll(planDir, 0o755); err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "creating .plan directory", err)
	}
	if err := fs.WriteFile(filepath.Join(planDir, "plan.md"), []byte(planBody), 0o644); err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "writing plan.md", err)
	}
	progress := fmt.Sprintf("---\ncompleted_steps: 0\ntotal_steps: %d\n---\n", totalSteps)
	if err := fs.WriteFile(filepath.Join(planDir, "progress.md"), []byte(progress), 0o644); err != nil {
		return domainerr.Wrap(domainerr.KindEnvironment, "writing progress.md", err)
	}
	return nil
}
