package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sqing33/stickyboard/pkg/board"
	"github.com/sqing33/stickyboard/pkg/estimate"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/layout"
	"github.com/sqing33/stickyboard/pkg/measure"
	"github.com/sqing33/stickyboard/pkg/note"
)

// arrangeCommand creates the "arrange" command repacking a board.
func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		flags       remoteFlags
		cellPx      float64
		insetPx     float64
		noResize    bool
		noCache     bool
		dryRun      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Repack the board, keeping pinned notes in place",
		Long: `Repack the whole board: pinned notes stay where they are and act as
obstacles, everything else is re-sized for the given cell width and moved
to close gaps. Each moved note is committed individually; one failure
never rolls back the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			b := board.New(board.Config{Remote: flags.remote(), Logger: c.Logger})
			if err := b.Load(ctx); err != nil {
				return err
			}
			notes := b.Notes()
			if len(notes) == 0 {
				printInfo("Board is empty, nothing to arrange")
				return nil
			}
			logger.Debug("loaded board", "notes", len(notes))

			if interactive {
				changed, aborted, err := pickLocks(ctx, b, notes)
				if err != nil {
					return err
				}
				if aborted {
					printInfo("Aborted")
					return nil
				}
				if changed > 0 {
					printDetail("updated %d pins", changed)
				}
				notes = b.Notes()
			}

			var sizer layout.Sizer
			if !noResize {
				estCache, err := newEstimateCache(noCache)
				if err != nil {
					return err
				}
				defer estCache.Close()

				est := estimate.New(measure.DefaultFont, estCache)
				env := estimate.Env{CellPx: cellPx, InsetPx: insetPx}
				sizer = func(content string) grid.Size {
					return est.Size(ctx, content, env)
				}
			}

			if dryRun {
				return printPlan(ctx, notes, sizer)
			}

			sp := newSpinner(ctx, fmt.Sprintf("Arranging %d notes…", len(notes)))
			sp.Start()
			res := b.Arrange(ctx, sizer)
			sp.Stop()

			if res.Failed > 0 {
				printWarning("Moved %d notes, %d failed and kept their position", res.Moved, res.Failed)
			} else {
				printSuccess("Moved %d notes", res.Moved)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&cellPx, "cell-px", 24, "pixel width of one grid cell")
	cmd.Flags().Float64Var(&insetPx, "inset-px", 4, "per-side gap between cards in pixels")
	cmd.Flags().BoolVar(&noResize, "no-resize", false, "keep current note sizes instead of re-estimating")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the size-estimate cache")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the new layout without committing it")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick pinned notes before arranging")

	return cmd
}

// pickLocks runs the interactive pin picker and commits every toggled
// lock flag. Returns how many pins changed and whether the user aborted.
func pickLocks(ctx context.Context, b *board.Board, notes []note.Note) (int, bool, error) {
	m := NewNoteListModel(notes)
	out, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return 0, false, err
	}
	final, ok := out.(NoteListModel)
	if !ok || !final.Confirm {
		return 0, true, nil
	}

	changed := 0
	for _, n := range notes {
		want := final.Locked[n.ID]
		if want == n.Locked {
			continue
		}
		if err := b.SetLocked(ctx, n.ID, want); err != nil {
			return changed, false, err
		}
		changed++
	}
	return changed, false, nil
}

// printPlan shows where each note would go without persisting anything.
func printPlan(ctx context.Context, notes []note.Note, sizer layout.Sizer) error {
	input := make([]layout.Note, 0, len(notes))
	byID := make(map[string]note.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
		input = append(input, layout.Note{
			ID:      n.ID,
			Rect:    n.Rect,
			Locked:  n.Locked,
			Content: n.Content,
		})
	}

	placements := layout.Arrange(ctx, input, sizer)
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Would move %d notes", len(placements))))
	for _, p := range placements {
		n := byID[p.ID]
		from := fmt.Sprintf("%d,%d %d×%d", n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H)
		to := fmt.Sprintf("%d,%d %d×%d", p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H)
		fmt.Println("  " + StyleValue.Render(firstLine(n.Content)) + "  " +
			StyleDim.Render(from+" → ") + StyleNumber.Render(to))
	}
	return nil
}
