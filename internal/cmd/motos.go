package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/dryrun"
	"github.com/mottu/mottu-cli/internal/iocontext"
	"github.com/mottu/mottu-cli/internal/resolve"
	"github.com/mottu/mottu-cli/internal/validation"
)

// plateFormats are shown when a plate is rejected.
var plateFormats = []string{"ABC1234", "ABC1D23"}

func newMotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "motos",
		Aliases: []string{"moto", "motorcycles", "m"},
		Short:   "Manage motorcycles",
	}

	cmd.AddCommand(newMotosListCmd())
	cmd.AddCommand(newMotosGetCmd())
	cmd.AddCommand(newMotosCreateCmd())
	cmd.AddCommand(newMotosUpdateCmd())
	cmd.AddCommand(newMotosDeleteCmd())

	return cmd
}

// checkPlate sanitizes raw and rejects malformed plates before any request.
func checkPlate(raw string) (string, error) {
	plate := api.SanitizePlate(raw)
	if !api.ValidPlate(plate) {
		return "", api.NewValidationError("placa", raw, plateFormats)
	}
	return plate, nil
}

// resolveAreaRef turns --area into an ID. Names need the area list; IDs do not.
func resolveAreaRef(ctx context.Context, client *api.Client, ref string) (int, error) {
	if resolve.IsID(ref) {
		return resolve.Area(ref, nil)
	}
	areas, err := client.Areas().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list areas: %w", err)
	}
	return resolve.Area(ref, areas)
}

// fillAreaNames sets AreaNome from the area list when the backend left it out.
// Failure to list areas only costs the names.
func fillAreaNames(ctx context.Context, client *api.Client, motos []api.Motorcycle) {
	missing := false
	for _, m := range motos {
		if m.AreaNome == "" && m.AreaID != 0 {
			missing = true
			break
		}
	}
	if !missing {
		return
	}
	areas, err := client.Areas().List(ctx)
	if err != nil {
		slog.Debug("area names unavailable", "error", err)
		return
	}
	names := make(map[int]string, len(areas))
	for _, a := range areas {
		names[a.ID] = a.Nome
	}
	for i := range motos {
		if motos[i].AreaNome == "" {
			motos[i].AreaNome = names[motos[i].AreaID]
		}
	}
}

func areaLabel(m api.Motorcycle) string {
	switch {
	case m.AreaNome != "":
		return m.AreaNome
	case m.AreaID != 0:
		return "#" + strconv.Itoa(m.AreaID)
	default:
		return "-"
	}
}

func yearLabel(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func newMotosListCmd() *cobra.Command {
	var (
		areaRef string
		plate   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List motorcycles",
		Example: strings.TrimSpace(`
  mottu motos list
  mottu motos list --area "Pátio A"
  mottu motos list --placa abc -o json --jq '.items[].id'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			motos, err := client.Motorcycles().List(ctx)
			if err != nil {
				return err
			}

			if areaRef != "" {
				areaID, err := resolveAreaRef(ctx, client, areaRef)
				if err != nil {
					return err
				}
				motos = filterMotos(motos, func(m api.Motorcycle) bool { return m.AreaID == areaID })
			}
			if plate != "" {
				needle := api.SanitizePlate(plate)
				motos = filterMotos(motos, func(m api.Motorcycle) bool {
					return strings.Contains(api.SanitizePlate(m.Placa), needle)
				})
			}

			if isJSON(cmd) {
				return printJSON(cmd, motos)
			}
			if len(motos) == 0 {
				newFormatter(cmd).Empty("No motorcycles found")
				return nil
			}

			fillAreaNames(ctx, client, motos)
			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "PLACA", "MODELO", "ANO", "AREA"})
			for _, m := range motos {
				f.Row(strconv.Itoa(m.ID), m.Placa, m.Modelo, yearLabel(m.Ano), areaLabel(m))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&areaRef, "area", "", "Only motorcycles in this area (name or ID)")
	cmd.Flags().StringVar(&plate, "placa", "", "Only plates containing this text")
	flagAlias(cmd.Flags(), "placa", "plate")
	return cmd
}

func filterMotos(motos []api.Motorcycle, keep func(api.Motorcycle) bool) []api.Motorcycle {
	out := motos[:0]
	for _, m := range motos {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func printMoto(cmd *cobra.Command, m *api.Motorcycle) {
	out := iocontext.GetIO(cmd.Context()).Out
	_, _ = fmt.Fprintf(out, "ID:      %d\n", m.ID)
	_, _ = fmt.Fprintf(out, "Placa:   %s\n", m.Placa)
	_, _ = fmt.Fprintf(out, "Modelo:  %s\n", m.Modelo)
	_, _ = fmt.Fprintf(out, "Ano:     %s\n", yearLabel(m.Ano))
	_, _ = fmt.Fprintf(out, "Area:    %s\n", areaLabel(*m))
	if m.CreatedAt != "" {
		_, _ = fmt.Fprintf(out, "Created: %s\n", m.CreatedAt)
	}
}

func newMotosGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get a motorcycle by ID",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "motorcycle")
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			m, err := client.Motorcycles().Get(cmdContext(cmd), id)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, m)
			}
			motos := []api.Motorcycle{*m}
			fillAreaNames(cmdContext(cmd), client, motos)
			printMoto(cmd, &motos[0])
			return nil
		}),
	}
}

// motoFlags are the writable motorcycle fields shared by create and update.
type motoFlags struct {
	placa  string
	modelo string
	ano    int
	area   string
}

func (f *motoFlags) register(cmd *cobra.Command, required bool) {
	suffix := ""
	if required {
		suffix = " (required)"
	}
	cmd.Flags().StringVar(&f.placa, "placa", "", "Plate, ABC1234 or ABC1D23"+suffix)
	cmd.Flags().StringVar(&f.modelo, "modelo", "", "Model name"+suffix)
	cmd.Flags().IntVar(&f.ano, "ano", 0, "Model year")
	cmd.Flags().StringVar(&f.area, "area", "", "Area name or ID"+suffix)
	flagAlias(cmd.Flags(), "placa", "plate")
	flagAlias(cmd.Flags(), "modelo", "model")
	flagAlias(cmd.Flags(), "ano", "year")
}

func (f *motoFlags) validate() error {
	return validation.ValidateModelYear(f.ano, now().Year())
}

func motoPreview(method string, client *api.Client, in api.MotorcycleInput, fields ...dryrun.Field) *dryrun.Preview {
	return &dryrun.Preview{
		Method:   method,
		Resource: "motorcycle",
		Paths:    client.Paths.Motorcycles,
		Fields: append(fields,
			dryrun.Field{Name: "placa", Value: in.Placa},
			dryrun.Field{Name: "modelo", Value: in.Modelo},
			dryrun.Field{Name: "ano", Value: in.Ano},
			dryrun.Field{Name: "areaId", Value: in.AreaID},
		),
	}
}

func reportMoto(cmd *cobra.Command, action string, m *api.Motorcycle) error {
	if m.Synthesized {
		warn(cmd, "the server reply did not include the motorcycle; showing the submitted values")
	}
	if isJSON(cmd) {
		return printJSON(cmd, m)
	}
	printAction(cmd, action, "motorcycle", m.ID, m.Placa)
	return nil
}

func newMotosCreateCmd() *cobra.Command {
	var mf motoFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"add", "new"},
		Short:   "Register a motorcycle",
		Example: strings.TrimSpace(`
  mottu motos create --placa ABC1D23 --modelo "Mottu Sport 110i" --area "Pátio A"
  mottu motos create --placa abc-1234 --modelo Pop --ano 2024 --area 2 --dry-run
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			plate, err := checkPlate(mf.placa)
			if err != nil {
				return err
			}
			modelo := strings.TrimSpace(mf.modelo)
			if modelo == "" {
				return fmt.Errorf("--modelo is required")
			}
			if strings.TrimSpace(mf.area) == "" {
				return fmt.Errorf("--area is required")
			}
			if err := mf.validate(); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			areaID, err := resolveAreaRef(ctx, client, mf.area)
			if err != nil {
				return err
			}

			in := api.MotorcycleInput{Placa: plate, Modelo: modelo, Ano: mf.ano, AreaID: areaID}
			if ok, err := maybeDryRun(cmd, motoPreview("POST", client, in)); ok {
				return err
			}

			m, err := client.Motorcycles().Create(ctx, in)
			if err != nil {
				return err
			}
			return reportMoto(cmd, "Created", m)
		}),
	}

	mf.register(cmd, true)
	return cmd
}

func newMotosUpdateCmd() *cobra.Command {
	var mf motoFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit", "set"},
		Short:   "Update a motorcycle",
		Long: strings.TrimSpace(`
Update a motorcycle. The backend replaces the whole record, so the current
values are fetched first and only the flags you pass are changed.
`),
		Example: strings.TrimSpace(`
  mottu motos update 12 --area Oficina
  mottu motos update 12 --placa ABC1D23 --ano 2025
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "motorcycle")
			if err != nil {
				return err
			}

			changed := false
			for _, name := range []string{"placa", "modelo", "ano", "area"} {
				if flagOrAliasChanged(cmd, name) {
					changed = true
				}
			}
			if !changed {
				return fmt.Errorf("nothing to update: pass at least one of --placa, --modelo, --ano, --area")
			}
			if err := mf.validate(); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			current, err := client.Motorcycles().Get(ctx, id)
			if err != nil {
				return err
			}
			in := api.MotorcycleInput{
				Placa:  current.Placa,
				Modelo: current.Modelo,
				Ano:    current.Ano,
				AreaID: current.AreaID,
			}
			if flagOrAliasChanged(cmd, "placa") {
				if in.Placa, err = checkPlate(mf.placa); err != nil {
					return err
				}
			}
			if flagOrAliasChanged(cmd, "modelo") {
				if in.Modelo = strings.TrimSpace(mf.modelo); in.Modelo == "" {
					return fmt.Errorf("--modelo must not be empty")
				}
			}
			if flagOrAliasChanged(cmd, "ano") {
				in.Ano = mf.ano
			}
			if flagOrAliasChanged(cmd, "area") {
				if in.AreaID, err = resolveAreaRef(ctx, client, mf.area); err != nil {
					return err
				}
			}

			if ok, err := maybeDryRun(cmd, motoPreview("PUT", client, in, dryrun.Field{Name: "id", Value: id})); ok {
				return err
			}

			m, err := client.Motorcycles().Update(ctx, id, in)
			if err != nil {
				return err
			}
			return reportMoto(cmd, "Updated", m)
		}),
	}

	mf.register(cmd, false)
	return cmd
}

func newMotosDeleteCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete one or more motorcycles",
		Example: strings.TrimSpace(`
  mottu motos delete 12
  mottu motos delete 12 13 14 --yes
  mottu motos delete 12,13 --dry-run
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args, "motorcycle")
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			return deleteMany(cmd, deleteTarget{
				resource:    "motorcycle",
				paths:       client.Paths.Motorcycles,
				ids:         ids,
				concurrency: concurrency,
				remove:      client.Motorcycles().Delete,
			})
		}),
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "Parallel requests when deleting several IDs")
	return cmd
}

// deleteTarget describes a confirmed, possibly parallel, deletion.
type deleteTarget struct {
	resource    string
	paths       []string
	ids         []int
	concurrency int
	remove      func(ctx context.Context, id int) error
}

func deleteMany(cmd *cobra.Command, target deleteTarget) error {
	idList := make([]string, len(target.ids))
	for i, id := range target.ids {
		idList[i] = strconv.Itoa(id)
	}

	preview := &dryrun.Preview{
		Method:   "DELETE",
		Resource: target.resource,
		Paths:    target.paths,
		Fields:   []dryrun.Field{{Name: "ids", Value: strings.Join(idList, ", ")}},
	}
	if ok, err := maybeDryRun(cmd, preview); ok {
		return err
	}

	ok, err := confirmAction(cmd, confirmOptions{
		Prompt:        fmt.Sprintf("Delete %d %s(s) (%s)? [y/N]: ", len(target.ids), target.resource, strings.Join(idList, ", ")),
		CancelMessage: "Cancelled.",
	})
	if err != nil || !ok {
		return err
	}

	var progress io.Writer
	if len(target.ids) > 1 && !flags.Quiet && !isJSON(cmd) {
		progress = iocontext.GetIO(cmd.Context()).ErrOut
	}
	results := runBulk(cmdContext(cmd), target.ids, target.concurrency, progress, target.remove)
	succeeded, failed := countResults(results)

	if isJSON(cmd) {
		if err := printJSON(cmd, map[string]any{
			"deleted": succeeded,
			"failed":  failed,
			"results": results,
		}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.OK {
				printAction(cmd, "Deleted", target.resource, r.ID, "")
			} else if len(results) > 1 {
				warn(cmd, "%s %d: %s", target.resource, r.ID, r.Error)
			}
		}
	}

	if failed == 0 {
		return nil
	}
	first := firstFailure(results)
	if len(results) == 1 {
		return first
	}
	return fmt.Errorf("%d of %d deletions failed: %w", failed, len(results), first)
}
