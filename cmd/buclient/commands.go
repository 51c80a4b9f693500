package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/univalle-bu/bu-client/internal/app"
	"github.com/univalle-bu/bu-client/internal/config"
	"github.com/univalle-bu/bu-client/internal/logger"
	"github.com/univalle-bu/bu-client/pkg/apiclient"
)

// cli holds what every command needs to build the runtime and print results.
type cli struct {
	out io.Writer
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out}
}

func newParser(c *cli) *flags.Parser {
	parser := flags.NewNamedParser("buclient", flags.Default)
	parser.ShortDescription = "Bienestar Universitario API client"

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"login", "Log in and store the access token", "Exchanges credentials for an access token and saves it in local storage.", &loginCommand{c: c}},
		{"logout", "Remove the stored access token", "Removes the access token; later requests carry no Authorization header.", &logoutCommand{c: c}},
		{"whoami", "Show the stored token's claims", "Decodes the stored access token without verifying it.", &whoamiCommand{c: c}},
		{"verify", "Verify the stored token with the backend", "Posts the stored token to /auth/verify-token.", &verifyCommand{c: c}},
		{"env", "Print the resolved endpoints", "Prints the API base URL and the published WebSocket URL.", &envCommand{c: c}},
		{"request", "Send a request through the shared client", "Sends METHOD PATH with the default headers and the stored bearer token.", &requestCommand{c: c}},
		{"watch", "Stream WebSocket broadcasts", "Connects to the WebSocket endpoint and prints every message until interrupted.", &watchCommand{c: c}},
	}
	for _, cmd := range commands {
		if _, err := parser.AddCommand(cmd.name, cmd.short, cmd.long, cmd.data); err != nil {
			panic(fmt.Sprintf("register command %s: %v", cmd.name, err))
		}
	}
	return parser
}

// withApp loads config, starts logging and builds the runtime for the duration of fn.
func (c *cli) withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize client", "error", err)
		return err
	}
	defer a.Close()

	return fn(a.Context(ctx), a)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type loginCommand struct {
	Username string `short:"u" long:"username" required:"true" description:"Account username"`
	Password string `short:"p" long:"password" env:"BU_PASSWORD" required:"true" description:"Account password"`

	c *cli
}

func (cmd *loginCommand) Execute([]string) error {
	return cmd.c.withApp(func(ctx context.Context, a *app.App) error {
		res, err := a.Session().Login(ctx, cmd.Username, cmd.Password)
		if err != nil {
			return err
		}
		logger.InfoObj("logged in", "user", res.User.Username)
		return cmd.c.printJSON(res.User)
	})
}

type logoutCommand struct {
	c *cli
}

func (cmd *logoutCommand) Execute([]string) error {
	return cmd.c.withApp(func(_ context.Context, a *app.App) error {
		if err := a.Session().Logout(); err != nil {
			return err
		}
		logger.InfoObj("logged out", "token_key", apiclient.AccessTokenKey)
		return nil
	})
}

type whoamiCommand struct {
	c *cli
}

func (cmd *whoamiCommand) Execute([]string) error {
	return cmd.c.withApp(func(_ context.Context, a *app.App) error {
		claims, err := a.Session().Current()
		if err != nil {
			return err
		}
		return cmd.c.printJSON(claims)
	})
}

type verifyCommand struct {
	c *cli
}

func (cmd *verifyCommand) Execute([]string) error {
	return cmd.c.withApp(func(ctx context.Context, a *app.App) error {
		res, err := a.Session().Verify(ctx)
		if err != nil {
			return err
		}
		return cmd.c.printJSON(res)
	})
}

type envCommand struct {
	c *cli
}

func (cmd *envCommand) Execute([]string) error {
	return cmd.c.withApp(func(_ context.Context, a *app.App) error {
		return cmd.c.printJSON(map[string]string{
			"api_url":    a.Client().BaseURL(),
			"web_socket": a.Env().WebSocket,
		})
	})
}

type requestCommand struct {
	Data string `short:"d" long:"data" description:"JSON request body"`
	Args struct {
		Method string `positional-arg-name:"METHOD" required:"yes"`
		Path   string `positional-arg-name:"PATH" required:"yes"`
	} `positional-args:"yes"`

	c *cli
}

func (cmd *requestCommand) Execute([]string) error {
	return cmd.c.withApp(func(ctx context.Context, a *app.App) error {
		body, err := a.Request(ctx, strings.ToUpper(cmd.Args.Method), cmd.Args.Path, []byte(cmd.Data))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.c.out, string(body))
		return err
	})
}

type watchCommand struct {
	c *cli
}

func (cmd *watchCommand) Execute([]string) error {
	return cmd.c.withApp(func(ctx context.Context, a *app.App) error {
		return a.Watch(ctx, func(msg []byte) error {
			_, err := fmt.Fprintln(cmd.c.out, string(msg))
			return err
		})
	})
}
