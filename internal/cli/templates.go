package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cwal/internal/config"
	"github.com/jmylchreest/cwal/internal/template"
)

func (a *app) templatesCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage output templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates and where each one comes from",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, l, err := a.setup()
			if err != nil {
				return err
			}

			loader := template.New(template.Defaults(), template.DefaultDirs(cfg.Dir), l.Named("template"))
			tbl := NewTable([]string{"TEMPLATE", "SOURCE"})
			for _, s := range loader.Sources() {
				src := s.Dir
				if src == "" {
					src = "(built-in)"
				}
				tbl.AddRow([]string{s.Name, src})
			}
			fmt.Fprint(a.stdout, tbl.Render())
			return nil
		},
	}

	dump := &cobra.Command{
		Use:   "dump [dir]",
		Short: "Copy the built-in templates for editing",
		Long: `Copy the built-in templates into dir, by default the templates directory
of the configuration, so they can be edited. Existing files are kept unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, l, err := a.setup()
			if err != nil {
				return err
			}

			dir := cfg.TemplatesPath()
			if len(args) == 1 {
				dir = config.ExpandHome(args[0])
			}

			loader := template.New(template.Defaults(), nil, l.Named("template"))
			dumped, err := loader.Dump(dir, force)
			if err != nil {
				return err
			}
			for _, path := range dumped {
				fmt.Fprintln(a.stdout, path)
			}
			return nil
		},
	}
	dump.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing templates")

	cmd.AddCommand(list, dump)
	return cmd
}
