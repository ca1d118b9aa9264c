package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/posauth/internal/client/api"
	"github.com/iudanet/posauth/internal/client/iocli"
	"github.com/iudanet/posauth/internal/client/storage"
	"github.com/iudanet/posauth/internal/client/storage/boltdb"
)

const (
	defaultIssuerURL  = "http://localhost:8080"
	defaultWebhookURL = "http://localhost:8081"
	defaultDBPath     = "posauth-client.db"
)

// Options зависимости корневой команды
type Options struct {
	IO iocli.IO
	// NewClient создает клиента по адресам сервисов
	NewClient func(issuerURL, webhookURL string) AuthClient
	// OpenSessions открывает локальное хранилище сессии по пути из --db
	OpenSessions func(cmd *cobra.Command, path string) (storage.SessionStorage, error)
	Version      string
}

// DefaultOptions использует stdin/stdout, HTTP клиента и BoltDB
func DefaultOptions(version string) Options {
	return Options{
		IO: iocli.NewStdio(),
		NewClient: func(issuerURL, webhookURL string) AuthClient {
			return api.NewClient(issuerURL, webhookURL)
		},
		OpenSessions: func(cmd *cobra.Command, path string) (storage.SessionStorage, error) {
			return boltdb.New(cmd.Context(), path)
		},
		Version: version,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewRootCommand собирает команду posauth с подкомандами register, login, logout и verify
func NewRootCommand(opts Options) *cobra.Command {
	var (
		issuerURL  string
		webhookURL string
		dbPath     string
		c          *Cli
	)

	root := &cobra.Command{
		Use:           "posauth",
		Short:         "Client for the POS auth-service and auth-webhook",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var sessions storage.SessionStorage
			if dbPath != "" && opts.OpenSessions != nil {
				s, err := opts.OpenSessions(cmd, dbPath)
				if err != nil {
					return err
				}
				sessions = s
			}
			c = New(opts.NewClient(issuerURL, webhookURL), opts.IO, sessions)
			return nil
		},
	}

	// withSession закрывает хранилище сессии после команды, в том числе при ошибке
	withSession := func(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if c != nil && c.sessions != nil {
					err = errors.Join(err, c.sessions.Close())
				}
			}()
			return fn(cmd, args)
		}
	}

	root.PersistentFlags().StringVar(&issuerURL, "issuer", envOr("POSAUTH_ISSUER_URL", defaultIssuerURL), "auth-service URL")
	root.PersistentFlags().StringVar(&webhookURL, "webhook", envOr("POSAUTH_WEBHOOK_URL", defaultWebhookURL), "auth-webhook URL")
	root.PersistentFlags().StringVar(&dbPath, "db", envOr("POSAUTH_DB", defaultDBPath), "path to local session database, empty to disable")

	var regOpts RegisterOptions
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string) error {
			return c.runRegister(cmd.Context(), regOpts)
		}),
	}
	registerCmd.Flags().StringVarP(&regOpts.Username, "username", "u", "", "username")
	registerCmd.Flags().StringVarP(&regOpts.Role, "role", "r", "", "role (manager, cashier)")
	addPasswordFlags(registerCmd, &regOpts.Passwords)

	var loginOpts LoginOptions
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, print and save an access token",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), loginOpts)
		}),
	}
	loginCmd.Flags().StringVarP(&loginOpts.Username, "username", "u", "", "username")
	loginCmd.Flags().BoolVar(&loginOpts.TokenOnly, "token-only", false, "print only the access token")
	addPasswordFlags(loginCmd, &loginOpts.Passwords)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved access token",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string) error {
			return c.runLogout(cmd.Context())
		}),
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [token]",
		Short: "Check a token (default: the saved one) against the auth-webhook",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string) error {
			var tok string
			if len(args) == 1 {
				tok = args[0]
			}
			return c.runVerify(cmd.Context(), tok)
		}),
	}

	root.AddCommand(registerCmd, loginCmd, logoutCmd, verifyCmd)
	return root
}

func addPasswordFlags(cmd *cobra.Command, p *Passwords) {
	cmd.Flags().StringVar(&p.FromArgs, "password", "", "password (not recommended, use "+PasswordEnv+" or --password-file)")
	cmd.Flags().StringVar(&p.FromFile, "password-file", "", "path to file containing the password")
}
