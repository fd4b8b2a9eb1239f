package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/dryrun"
	"github.com/mottu/mottu-cli/internal/validation"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "u"},
		Short:   "Manage user accounts",
		Long:    "Manage user accounts. Every user endpoint is sent the x-api-version header (env MOTTU_API_VERSION).",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newUsersDeleteCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if role != "" {
				var err error
				if role, err = normalizeEnum("role", role, api.Roles); err != nil {
					return err
				}
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			users, err := client.Users().List(cmdContext(cmd))
			if err != nil {
				return err
			}
			if role != "" {
				filtered := users[:0]
				for _, u := range users {
					if strings.EqualFold(u.Role, role) {
						filtered = append(filtered, u)
					}
				}
				users = filtered
			}

			if isJSON(cmd) {
				return printJSON(cmd, users)
			}
			if len(users) == 0 {
				newFormatter(cmd).Empty("No users found")
				return nil
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "USERNAME", "NOME", "EMAIL", "ROLE"})
			for _, u := range users {
				f.Row(strconv.Itoa(u.ID), u.Username, u.Nome, u.Email, u.Role)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&role, "role", "", "Only users with this role ("+strings.Join(api.Roles, "|")+")")
	return cmd
}

// userFlags are the user fields shared by create and update.
type userFlags struct {
	nome          string
	email         string
	username      string
	senha         string
	passwordStdin bool
	role          string
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nome, "nome", "", "Full name")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Login name")
	cmd.Flags().StringVar(&f.senha, "senha", "", "Password")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&f.role, "role", "", "Role: "+strings.Join(api.Roles, "|"))
	flagAlias(cmd.Flags(), "nome", "name")
	flagAlias(cmd.Flags(), "senha", "password")
}

// normalize trims and validates whatever was set.
func (f *userFlags) normalize(cmd *cobra.Command) error {
	f.nome = strings.TrimSpace(f.nome)
	f.email = strings.TrimSpace(f.email)
	f.username = strings.TrimSpace(f.username)

	if err := validation.ValidateName(f.nome); err != nil {
		return err
	}
	if err := validation.ValidateEmail(f.email); err != nil {
		return err
	}
	if f.role != "" {
		role, err := normalizeEnum("role", f.role, api.Roles)
		if err != nil {
			return err
		}
		f.role = role
	}
	if f.passwordStdin {
		if f.senha != "" {
			return fmt.Errorf("--senha and --password-stdin are mutually exclusive")
		}
		password, err := readPassword(cmd, "--senha")
		if err != nil {
			return err
		}
		f.senha = password
	}
	return nil
}

func userPreview(method string, client *api.Client, f userFlags, fields ...dryrun.Field) *dryrun.Preview {
	preview := &dryrun.Preview{
		Method:   method,
		Resource: "user",
		Paths:    []string{client.Paths.Users},
		Fields:   fields,
	}
	add := func(name, value string) {
		if value != "" {
			preview.Fields = append(preview.Fields, dryrun.Field{Name: name, Value: value})
		}
	}
	add("username", f.username)
	add("nome", f.nome)
	add("email", f.email)
	add("role", f.role)
	if f.senha != "" {
		preview.Fields = append(preview.Fields, dryrun.Field{Name: "senha", Value: "********"})
	}
	return preview
}

func reportUser(cmd *cobra.Command, action string, u *api.User) error {
	if isJSON(cmd) {
		return printJSON(cmd, u)
	}
	printAction(cmd, action, "user", u.ID, u.Username)
	return nil
}

func newUsersCreateCmd() *cobra.Command {
	var uf userFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"add", "new"},
		Short:   "Create a user",
		Long: strings.TrimSpace(`
Create a user. The role defaults to User. When neither --senha nor
--password-stdin is given, the password is prompted for.
`),
		Example: strings.TrimSpace(`
  mottu users create -u ana --nome "Ana Souza" --email ana@mottu.com
  echo "$PW" | mottu users create -u ops --role Admin --password-stdin
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := uf.normalize(cmd); err != nil {
				return err
			}
			if uf.username == "" {
				return fmt.Errorf("--username is required")
			}
			if uf.role == "" {
				uf.role = api.DefaultRole
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, userPreview("POST", client, uf)); ok {
				return err
			}
			if uf.senha == "" {
				if uf.senha, err = readPassword(cmd, "--senha"); err != nil {
					return err
				}
			}

			u, err := client.Users().Create(cmdContext(cmd), api.UserInput{
				Nome:     uf.nome,
				Email:    uf.email,
				Username: uf.username,
				Senha:    uf.senha,
				Role:     uf.role,
			})
			if err != nil {
				return err
			}
			return reportUser(cmd, "Created", u)
		}),
	}

	uf.register(cmd)
	return cmd
}

func newUsersUpdateCmd() *cobra.Command {
	var uf userFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit", "set"},
		Short:   "Update a user",
		Long:    "Update a user. Only the fields you pass are sent; the password is kept unless --senha or --password-stdin is given.",
		Example: strings.TrimSpace(`
  mottu users update 7 --role Admin
  mottu users update 7 --email novo@mottu.com
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if err := uf.normalize(cmd); err != nil {
				return err
			}
			if uf.nome == "" && uf.email == "" && uf.username == "" && uf.senha == "" && uf.role == "" {
				return fmt.Errorf("nothing to update: pass at least one of --nome, --email, --username, --senha, --role")
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, userPreview("PUT", client, uf, dryrun.Field{Name: "id", Value: id})); ok {
				return err
			}

			u, err := client.Users().Update(cmdContext(cmd), id, api.UserChanges{
				Nome:     uf.nome,
				Email:    uf.email,
				Username: uf.username,
				Senha:    uf.senha,
				Role:     uf.role,
			})
			if err != nil {
				return err
			}
			return reportUser(cmd, "Updated", u)
		}),
	}

	uf.register(cmd)
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete one or more users",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args, "user")
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			return deleteMany(cmd, deleteTarget{
				resource:    "user",
				paths:       []string{client.Paths.Users},
				ids:         ids,
				concurrency: concurrency,
				remove:      client.Users().Delete,
			})
		}),
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "Parallel requests when deleting several IDs")
	return cmd
}
