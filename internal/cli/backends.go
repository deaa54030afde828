package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/backend/manager"
)

func (a *app) backendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backends",
		Aliases: []string{"backend"},
		Short:   "Manage image processing backends",
		Long: `Manage the backends that extract base colours from images.

Built-in backends are always available. Custom backends live in the
backends directory of the configuration (~/.config/cwal/backends): Lua
scripts (*.lua) and executables speaking the json-stdio or go-plugin
protocol. Set CWAL_DISABLED_BACKENDS to a comma-separated list to hide
backends.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available backends in fallback order",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, l, err := a.setup()
			if err != nil {
				return err
			}
			a.printBackends(a.backends(cfg, l))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "install <file|https-url>",
		Short: "Install a backend into the backends directory",
		Long: `Install a backend from a local file or an HTTPS URL.

Lua scripts and executables are copied as is. Archives (.tar.gz, .tgz,
.tar.xz, .tar.bz2, .zip) are searched for the file named after the archive,
then for a Lua script, then for an executable. Single compressed files
(.gz, .xz, .bz2) are decompressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := a.setup()
			if err != nil {
				return err
			}

			res, err := manager.Install(cmd.Context(), args[0], cfg.BackendsPath(), l.Named("install"))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Installed backend to %s\n", res.Path)
			return nil
		},
	})

	return cmd
}

// printBackends lists the registry in fallback order.
func (a *app) printBackends(m *manager.Manager) {
	tbl := NewTable([]string{"NAME", "KIND", "DESCRIPTION"})
	tbl.SetColumnMaxWidth(2, 60)
	for _, b := range m.Registry().All() {
		tbl.AddRow([]string{b.Name(), string(m.Kind(b.Name())), backend.Description(b)})
	}
	fmt.Fprint(a.stdout, tbl.Render())
}
