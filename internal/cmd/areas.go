package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/resolve"
)

func newAreasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "areas",
		Aliases: []string{"area", "a"},
		Short:   "List yard areas",
	}

	cmd.AddCommand(newAreasListCmd())
	cmd.AddCommand(newAreasResolveCmd())

	return cmd
}

func newAreasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List areas",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			areas, err := client.Areas().List(cmdContext(cmd))
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, areas)
			}
			if len(areas) == 0 {
				newFormatter(cmd).Empty("No areas found")
				return nil
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "NOME"})
			for _, a := range areas {
				f.Row(strconv.Itoa(a.ID), a.Nome)
			}
			return f.EndTable()
		}),
	}
}

// newAreasResolveCmd shows which area a name given to --area would select.
func newAreasResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Show the area a name resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			areas, err := client.Areas().List(cmdContext(cmd))
			if err != nil {
				return err
			}
			id, err := resolve.Area(args[0], areas)
			if err != nil {
				return err
			}

			name := ""
			for _, a := range areas {
				if a.ID == id {
					name = a.Nome
					break
				}
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"id": id, "nome": name})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, name)
			return nil
		}),
	}
}
