package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/config"
	"github.com/mottu/mottu-cli/internal/iocontext"
	"github.com/mottu/mottu-cli/internal/validation"
)

// now is replaced in tests.
var now = time.Now

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Log in, register and manage the stored session",
		Long:    "Authenticate against the Mottu API. The issued token is stored in your OS keychain under a profile.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthProfilesCmd())

	return cmd
}

type credentialFlags struct {
	username string
	password string
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "Password (prompted when omitted)")
	flagAlias(cmd.Flags(), "username", "user")
}

// resolve fills in the password from stdin when it was not passed as a flag.
func (c *credentialFlags) resolve(cmd *cobra.Command) error {
	c.username = strings.TrimSpace(c.username)
	if c.username == "" {
		return fmt.Errorf("--username is required")
	}
	if c.password != "" {
		return nil
	}
	password, err := readPassword(cmd, "--password")
	if err != nil {
		return err
	}
	c.password = password
	return nil
}

// readPassword reads a password from stdin, prompting without echo on a TTY.
func readPassword(cmd *cobra.Command, flagName string) (string, error) {
	ioStreams := iocontext.GetIO(cmd.Context())
	if ioStreams.InIsTerminal() {
		_, _ = fmt.Fprint(ioStreams.ErrOut, "Password: ")
	}
	password, err := ioStreams.ReadSecret()
	if ioStreams.InIsTerminal() {
		_, _ = fmt.Fprintln(ioStreams.ErrOut)
	}
	if err != nil || password == "" {
		return "", fmt.Errorf("%s is required (or type it when prompted)", flagName)
	}
	return password, nil
}

// sessionProfile is the profile a new session is saved under.
func sessionProfile() string {
	if flags.Profile != "" {
		return flags.Profile
	}
	if current, err := config.CurrentProfile(); err == nil {
		return current
	}
	return ""
}

// unauthenticatedClient builds a client for login and registration. A base URL
// must come from --base-url, the environment or the stored profile.
func unauthenticatedClient() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(flags.Profile, flags.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	cfg.Token = ""
	return newClientFactory().newClient(cfg), nil
}

func saveSession(cmd *cobra.Command, client *api.Client, result *api.LoginResult, action string) error {
	profile := sessionProfile()
	account := config.Account{
		BaseURL:  client.BaseURL,
		Token:    result.Token,
		Username: result.Username,
	}
	if err := config.SaveProfile(profile, account); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if profile == "" {
		profile = "default"
	}

	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{
			"username": result.Username,
			"baseUrl":  client.BaseURL,
			"profile":  profile,
		})
	}
	printAction(cmd, action, "as", result.Username, "")
	if !flags.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", client.BaseURL)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Profile:  %s\n", profile)
	}
	return nil
}

func newAuthLoginCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: strings.TrimSpace(`
Log in with a username and password. Every configured login path is tried in
order until one accepts the credentials; the token it returns is stored in the
OS keychain under the current profile (or --profile).
`),
		Example: strings.TrimSpace(`
  # First login against a local backend
  mottu auth login --base-url http://localhost:5000 -u admin

  # Non-interactive
  mottu auth login -u admin -p "$MOTTU_PASSWORD"
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd); err != nil {
				return err
			}
			client, err := unauthenticatedClient()
			if err != nil {
				return err
			}
			result, err := client.Auth().Login(cmdContext(cmd), creds.username, creds.password)
			if err != nil {
				return err
			}
			return saveSession(cmd, client, result, "Logged in")
		}),
	}
	creds.register(cmd)
	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session",
		Long: strings.TrimSpace(`
Register a new account. When the backend does not return a token on
registration, the new credentials are used to log in. Backends without a
registration endpoint report that an administrator must create the user.
`),
		Example: strings.TrimSpace(`
  mottu auth register --base-url http://localhost:5000 -u ana
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd); err != nil {
				return err
			}
			client, err := unauthenticatedClient()
			if err != nil {
				return err
			}
			result, err := client.Auth().Register(cmdContext(cmd), creds.username, creds.password)
			if err != nil {
				return err
			}
			return saveSession(cmd, client, result, "Registered and logged in")
		}),
	}
	creds.register(cmd)
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Long:  "Remove the token from the keychain. The profile's base URL is kept for the next login.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := sessionProfile()
			if err := config.ClearToken(profile); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"loggedOut": true})
			}
			if !flags.Quiet {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			}
			return nil
		}),
	}
}

// tokenClaims is what auth status shows from the stored JWT. The token is not
// verified; the server remains the authority.
type tokenClaims struct {
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func inspectToken(token string) (*tokenClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	out := &tokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		out.ExpiresAt = &t
		out.Expired = now().After(t)
	}
	return out, true
}

// maskToken shows only the first and last 4 characters of a token.
func maskToken(token string) string {
	if len(token) < 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			account, err := config.LoadAccountFor(flags.Profile)
			if err != nil && !errors.Is(err, config.ErrNotConfigured) {
				return fmt.Errorf("failed to load session: %w", err)
			}
			authenticated := account.Token != ""
			claims, isJWT := inspectToken(account.Token)

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": authenticated,
					"baseUrl":       account.BaseURL,
					"username":      account.Username,
				}
				if authenticated {
					payload["token"] = maskToken(account.Token)
				}
				if isJWT {
					payload["claims"] = claims
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if !authenticated {
				_, _ = fmt.Fprintln(out, "Not logged in.")
				if account.BaseURL != "" {
					_, _ = fmt.Fprintf(out, "  Base URL: %s\n", account.BaseURL)
				}
				_, _ = fmt.Fprintln(out, "Run 'mottu auth login' to start a session.")
				return nil
			}
			_, _ = fmt.Fprintln(out, "Logged in")
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", account.BaseURL)
			if account.Username != "" {
				_, _ = fmt.Fprintf(out, "  Username: %s\n", account.Username)
			}
			_, _ = fmt.Fprintf(out, "  Token:    %s\n", maskToken(account.Token))
			if isJWT && claims.ExpiresAt != nil {
				state := "valid"
				if claims.Expired {
					state = "expired"
				}
				_, _ = fmt.Fprintf(out, "  Expires:  %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
			}
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profiles": profiles, "current": current})
			}
			if len(profiles) == 0 {
				newFormatter(cmd).Empty("No profiles stored")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p)
			}
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadProfile(args[0]); err != nil {
				return fmt.Errorf("profile %q: %w", args[0], err)
			}
			if err := config.SetCurrentProfile(args[0]); err != nil {
				return err
			}
			printAction(cmd, "Switched to", "profile", args[0], "")
			return nil
		}),
	})
	return cmd
}
