// adminctl is a terminal client for the portfolio site's administrative API.
// It drives the full session lifecycle: login, status, password change, and
// logout, with the session persisted between invocations.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/portfoliolabs/go-admin-client/api"
	"github.com/portfoliolabs/go-admin-client/internal/config"
	"github.com/portfoliolabs/go-admin-client/nav"
	"github.com/portfoliolabs/go-admin-client/session"
	"github.com/portfoliolabs/go-admin-client/storage"
	"github.com/portfoliolabs/go-admin-client/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() error {
	configPath := pflag.String("config", "", "path to a YAML config file")
	username := pflag.String("username", "", "username for login")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Usage = usage
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		return errors.New("a command is required")
	}
	command := pflag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(*verbose)

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	// The CLI is a purely administrative surface, so faults behave as they
	// would on an admin view: a 401/403 ends the session.
	navigator := nav.NewRecorder(nav.AdminPrefix)

	// The session manager both feeds the pipeline (bearer credential) and
	// reacts to it (fault-driven termination); bind it late.
	var sessions *session.Manager

	pipeline := transport.Chain(nil,
		transport.Logging(logger),
		transport.RequestID(),
		transport.Authorizer(transport.TokenSourceFunc(func() string {
			if sessions == nil {
				return ""
			}
			return sessions.Token()
		}), cfg.GetProtectedPrefix()),
		transport.FaultHandler(transport.SessionTerminatorFunc(func() {
			if sessions != nil {
				sessions.ClearSession()
			}
		}), navigator),
	)

	client, err := api.NewClient(cfg.GetBaseURL(), &http.Client{
		Timeout:   cfg.GetHTTPTimeout(),
		Transport: pipeline,
	})
	if err != nil {
		return err
	}
	authService, err := api.NewAuthService(client)
	if err != nil {
		return err
	}

	sessions, err = session.NewManager(authService, store, navigator, session.WithLogger(logger))
	if err != nil {
		return err
	}
	sessions.InitializeAuth()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetHTTPTimeout()+5*time.Second)
	defer cancel()

	switch command {
	case "login":
		return loginCommand(ctx, cfg, sessions, *username)
	case "status":
		return statusCommand(sessions)
	case "change-password":
		return changePasswordCommand(ctx, sessions)
	case "logout":
		sessions.Logout()
		fmt.Println("Logged out.")
		return nil
	default:
		usage()
		return errors.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: adminctl [flags] <login|status|change-password|logout>")
	pflag.PrintDefaults()
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.LoadFile(path)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func newStore(cfg config.Config) (storage.Store, error) {
	if addr := cfg.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return storage.NewRedis(client, "portfolio:")
	}

	var options []storage.FileOption
	if key := cfg.GetStorageKey(); key != nil {
		options = append(options, storage.WithEncryptionKey(key))
	}
	return storage.NewFile(cfg.GetStoragePath(), options...)
}

func loginCommand(ctx context.Context, cfg config.Config, sessions *session.Manager, username string) error {
	displayAppname(cfg.GetAppName())

	if username == "" {
		var err error
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	current, err := sessions.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return errors.New("login failed: invalid credentials")
		}
		return err
	}

	fmt.Printf("Logged in as %s (session valid until %s).\n",
		current.Identity.Username, current.ExpiresAt.Format(time.RFC1123))
	printPasswordWarning(sessions)
	return nil
}

func statusCommand(sessions *session.Manager) error {
	if !sessions.IsAuthenticated() {
		fmt.Println("Not authenticated.")
		return nil
	}

	current := sessions.Current()
	fmt.Printf("Authenticated as %s (%s), session valid until %s.\n",
		current.Identity.Username, current.Identity.Role, current.ExpiresAt.Format(time.RFC1123))
	printPasswordWarning(sessions)
	return nil
}

func changePasswordCommand(ctx context.Context, sessions *session.Manager) error {
	currentPassword, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirmPassword, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}

	if _, err := sessions.ChangePassword(ctx, currentPassword, newPassword, confirmPassword); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
		return err
	}

	fmt.Println("Password changed successfully.")
	return nil
}

func printPasswordWarning(sessions *session.Manager) {
	if sessions.RequiresPasswordChange() {
		fmt.Println("WARNING: your password must be changed. Run 'adminctl change-password'.")
	}
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(raw), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
