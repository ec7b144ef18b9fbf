package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/semver"
	"shipit.dev/shipit/internal/tui"
)

// newTagCmd creates the tag command
func newTagCmd() *cobra.Command {
	var (
		create  bool
		push    bool
		message string
	)

	cmd := &cobra.Command{
		Use:          "tag [name]",
		Short:        "Validate a release tag name, or show the release tag at HEAD",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			repo, err := openRepo()
			if err != nil {
				return err
			}

			// Without a name, report the highest release tag at HEAD.
			if len(args) == 0 {
				names, err := repo.TagsAtHead()
				if err != nil {
					return err
				}
				var highest *semver.Tag
				for _, name := range names {
					tag, err := semver.Parse(name)
					if err != nil {
						continue
					}
					if highest == nil || semver.Compare(tag, *highest) > 0 {
						t := tag
						highest = &t
					}
				}
				if highest == nil {
					splog.Info("No release tags at HEAD")
					return nil
				}
				splog.Info("Release tag at HEAD: %s", tui.ColorTagName(highest.String()))
				return nil
			}

			tag, err := semver.Parse(args[0])
			if err != nil {
				return err
			}
			name := tag.String()
			splog.Info("%s %s matches the release pattern", tui.ColorGreen("✓"), tui.ColorTagName(name))

			if !create && !push {
				return nil
			}

			exists, err := repo.TagExists(name)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("tag %s already exists", name)
			}

			if message == "" {
				message = fmt.Sprintf("Release %s", tag.Version())
			}
			if err := repo.CreateTag(cmd.Context(), name, message); err != nil {
				return err
			}
			splog.Info("Created tag %s", tui.ColorTagName(name))

			if push {
				if err := repo.PushTag(cmd.Context(), name); err != nil {
					return err
				}
				splog.Info("Pushed %s to origin", tui.ColorTagName(name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create an annotated tag at HEAD")
	cmd.Flags().BoolVar(&push, "push", false, "Create the tag and push it to origin")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Annotation message for the tag")

	return cmd
}
