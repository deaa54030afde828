package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cwal/internal/theme"
)

func (a *app) themesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "themes",
		Aliases: []string{"theme"},
		Short:   "Manage colour themes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available themes",
		Long: `List the themes in every theme directory. Earlier directories win when
names clash: ~/.config/cwal/themes, ~/.local/share/cwal/themes, then
` + theme.SystemDir + `.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, l, err := a.setup()
			if err != nil {
				return err
			}
			a.printThemes(a.themes(cfg, l))
			return nil
		},
	})

	return cmd
}

// printThemes lists themes grouped by directory, dark before light.
func (a *app) printThemes(loader *theme.Loader) {
	groups := loader.List()
	if len(groups) == 0 {
		fmt.Fprintln(a.stdout, "No themes found.")
		return
	}

	for i, g := range groups {
		if i == 0 || groups[i-1].Dir != g.Dir {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "Themes in %s:\n", g.Dir)
		}

		title := "Dark themes"
		if g.Kind == theme.KindLight {
			title = "Light themes"
		}
		fmt.Fprintf(a.stdout, "  %s:\n", title)
		for _, name := range g.Names {
			fmt.Fprintf(a.stdout, "    %s\n", name)
		}
	}
}
