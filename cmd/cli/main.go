package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vaughan-dsouza/cinnamart/internal/client"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"golang.org/x/term"
)

const usage = `usage: cinnamart [-api URL] [-store PATH] <command> [flags]

commands:
  login     -email EMAIL [-password PASSWORD]
  register  -name NAME -email EMAIL [-role customer|vendor] [-business NAME] [-password PASSWORD]
  whoami    [-refresh]
  logout
  ping
`

func main() {
	_ = godotenv.Load()
	logging.Init(logging.Config{Level: getenv("LOG_LEVEL", "warn"), Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("cinnamart", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	apiURL := global.String("api", getenv("CINNAMART_API", "http://localhost:4000/api"), "API base URL")
	storePath := global.String("store", defaultStorePath(), "session database file")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	if err := os.MkdirAll(filepath.Dir(*storePath), 0o700); err != nil {
		return err
	}
	kv, err := client.OpenStorage(ctx, *storePath)
	if err != nil {
		return err
	}
	defer kv.Close()

	api, err := client.NewAPI(*apiURL)
	if err != nil {
		return err
	}
	sess, err := client.NewSession(ctx, api, kv)
	if err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "login":
		return login(ctx, sess, rest)
	case "register":
		return register(ctx, sess, rest)
	case "whoami":
		return whoami(ctx, sess, rest)
	case "logout":
		if err := sess.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	case "ping":
		if err := api.Ping(ctx); err != nil {
			return err
		}
		fmt.Println("Server reachable")
		return nil
	}
	global.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func login(ctx context.Context, sess *client.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: -email is required")
	}

	pw, err := passwordOrPrompt(*password)
	if err != nil {
		return err
	}

	p, err := sess.Login(ctx, *email, pw)
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Signed in as %s (%s)\n", p.Email, p.Role)
	return nil
}

func register(ctx context.Context, sess *client.Session, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	role := fs.String("role", string(models.RoleCustomer), "customer or vendor")
	business := fs.String("business", "", "business name (vendors)")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := passwordOrPrompt(*password)
	if err != nil {
		return err
	}

	p, err := sess.Register(ctx, models.NewUser{
		Name:         *name,
		Email:        *email,
		Password:     pw,
		Role:         models.Role(*role),
		BusinessName: *business,
	})
	if err != nil {
		return explain(err)
	}
	fmt.Printf("Registered %s (%s)\n", p.Email, p.Role)
	return nil
}

func whoami(ctx context.Context, sess *client.Session, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	refresh := fs.Bool("refresh", false, "confirm the session with the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *refresh && sess.IsAuthenticated() {
		if _, err := sess.Refresh(ctx); err != nil {
			return explain(err)
		}
	}

	p, ok := sess.Current()
	if !ok {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("%s <%s>\nrole: %s\nid:   %s\n", p.Name, p.Email, p.Role, p.ID)
	if p.BusinessName != "" {
		fmt.Printf("business: %s\n", p.BusinessName)
	}
	return nil
}

func passwordOrPrompt(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func explain(err error) error {
	if client.IsNetworkError(err) {
		return errors.New("network error: please check your connection or try again later")
	}
	return err
}

func defaultStorePath() string {
	if p := os.Getenv("CINNAMART_STORE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cinnamart-session.db"
	}
	return filepath.Join(dir, "cinnamart", "session.db")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
