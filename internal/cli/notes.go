package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqing33/stickyboard/pkg/board"
	boardio "github.com/sqing33/stickyboard/pkg/io"
	"github.com/sqing33/stickyboard/pkg/note"
)

// remoteFlags are the connection flags shared by every client command.
type remoteFlags struct {
	server string
	token  string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "http://localhost:8420", "API base URL")
	cmd.Flags().StringVar(&f.token, "token", "", "session token (default $STICKYBOARD_TOKEN)")
}

func (f *remoteFlags) remote() *board.HTTPRemote {
	token := f.token
	if token == "" {
		token = os.Getenv("STICKYBOARD_TOKEN")
	}
	return board.NewHTTPRemote(f.server, token, nil)
}

// notesCommand creates the "notes" command group for working with a board.
func (c *CLI) notesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List, create, and delete notes on a board",
	}

	cmd.AddCommand(c.notesListCommand())
	cmd.AddCommand(c.notesCreateCommand())
	cmd.AddCommand(c.notesDeleteCommand())
	cmd.AddCommand(c.notesLockCommand())
	cmd.AddCommand(c.notesExportCommand())
	cmd.AddCommand(c.notesImportCommand())

	return cmd
}

// notesListCommand creates the "notes list" subcommand.
func (c *CLI) notesListCommand() *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board's notes and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := board.New(board.Config{Remote: flags.remote(), Logger: c.Logger})
			if err := b.Load(cmd.Context()); err != nil {
				return err
			}

			notes := b.Notes()
			if len(notes) == 0 {
				printInfo("Board is empty")
				return nil
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%d notes", len(notes))))
			for _, n := range notes {
				printNote(n.ID, n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H, n.Locked, n.Tags, firstLine(n.Content))
			}
			if tags := b.Tags(); len(tags) > 0 {
				printDetail("tags: %s", strings.Join(tags, ", "))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// notesCreateCommand creates the "notes create" subcommand.
func (c *CLI) notesCreateCommand() *cobra.Command {
	var (
		flags remoteFlags
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "create <content>",
		Short: "Create a note; the server sizes and places it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := board.New(board.Config{Remote: flags.remote(), Logger: c.Logger})
			if err := b.Load(cmd.Context()); err != nil {
				return err
			}

			id, err := b.Create(cmd.Context(), tags, args[0], nil)
			if err != nil {
				return err
			}

			printSuccess("Created note")
			printKeyValue("id", id)
			for _, n := range b.Notes() {
				if n.ID == id {
					printKeyValue("position", fmt.Sprintf("%d,%d %d×%d", n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H))
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&tags, "tag", []string{"note"}, "tags for the note (1-3, first is primary)")
	return cmd
}

// notesDeleteCommand creates the "notes delete" subcommand.
func (c *CLI) notesDeleteCommand() *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := board.New(board.Config{Remote: flags.remote(), Logger: c.Logger})
			if err := b.Load(cmd.Context()); err != nil {
				return err
			}
			if err := b.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// notesLockCommand creates the "notes lock" subcommand toggling the
// layout lock.
func (c *CLI) notesLockCommand() *cobra.Command {
	var (
		flags  remoteFlags
		unlock bool
	)

	cmd := &cobra.Command{
		Use:   "lock <id>",
		Short: "Pin a note so arrange never moves it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locked := !unlock
			if err := flags.remote().Patch(cmd.Context(), args[0], note.Patch{Locked: &locked}); err != nil {
				return err
			}
			if locked {
				printSuccess("Locked %s", args[0])
			} else {
				printSuccess("Unlocked %s", args[0])
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&unlock, "unlock", false, "release the layout lock instead")
	return cmd
}

// notesExportCommand creates the "notes export" subcommand.
func (c *CLI) notesExportCommand() *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the board to a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := board.New(board.Config{Remote: flags.remote(), Logger: c.Logger})
			if err := b.Load(cmd.Context()); err != nil {
				return err
			}

			notes := b.Notes()
			if err := boardio.ExportJSON(notes, args[0]); err != nil {
				return err
			}
			printSuccess("Exported %d notes", len(notes))
			printDetail("File: %s", args[0])
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// notesImportCommand creates the "notes import" subcommand.
func (c *CLI) notesImportCommand() *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore notes from a JSON snapshot",
		Long:  `Create every note from the snapshot on the board, then restore its exact rectangle and pin flag. Existing notes are left alone; importing the same file twice duplicates its notes.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			notes, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}

			remote := flags.remote()
			for i, n := range notes {
				size := n.Rect.Size()
				id, err := remote.Create(ctx, n.Tags, n.Content, &size)
				if err != nil {
					return fmt.Errorf("import note %d: %w", i, err)
				}
				rect := n.Rect
				locked := n.Locked
				if err := remote.Patch(ctx, id, note.Patch{Rect: &rect, Locked: &locked}); err != nil {
					return fmt.Errorf("restore note %d position: %w", i, err)
				}
			}

			printSuccess("Imported %d notes", len(notes))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// firstLine returns content up to the first line break.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
