package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sealbox/sealbox/internal/auth"
	"github.com/sealbox/sealbox/internal/errors"
	"github.com/sealbox/sealbox/internal/ops"
	"github.com/sealbox/sealbox/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(svc *ops.Service, admin *auth.Admin) *cli.App {
	app := &cli.App{
		Name:    "sealbox",
		Usage:   "Time-locked capsule store",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(svc, admin),
			createCmd(svc),
			getCmd(svc),
			statusCmd(svc),
			listCmd(svc),
			deleteCmd(svc),
			loginCmd(admin),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command, which runs the HTTP API.
func serveCmd(svc *ops.Service, admin *auth.Admin) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(svc, admin, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// createCmd creates the create command.
func createCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Seal a new capsule (reads content from stdin when piped)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Capsule title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Capsule content (ignored when stdin is piped)"},
			&cli.StringFlag{Name: "nickname", Aliases: []string{"n"}, Usage: "Creator nickname"},
			&cli.StringFlag{Name: "open", Aliases: []string{"o"}, Usage: "Open time as RFC 3339 (e.g. 2027-01-01T00:00:00Z)"},
		},
		Action: func(c *cli.Context) error {
			content := c.String("content")
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}

			openTime, err := time.Parse(time.RFC3339, c.String("open"))
			if err != nil {
				return outputError(errors.NewValidation("open must be an RFC 3339 timestamp"))
			}

			output, err := svc.Create(c.Context, ops.CreateInput{
				Title:           c.String("title"),
				Content:         content,
				CreatorNickname: c.String("nickname"),
				OpenTime:        openTime,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a capsule by access code",
		ArgsUsage: "<code>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("exactly one access code is required"))
			}
			output, err := svc.Get(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Check whether a capsule is open yet (never prints content)",
		ArgsUsage: "<code>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("exactly one access code is required"))
			}
			output, err := svc.Status(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List active capsules (admin token required)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Usage: "Admin token from 'sealbox login'"},
			&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number (1-based)"},
			&cli.IntFlag{Name: "size", Value: 0, Usage: "Page size"},
			&cli.StringFlag{Name: "sort", Usage: "Sort spec, e.g. createdAt,desc"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.List(c.Context, ops.ListInput{
				Credential: c.String("token"),
				Sort:       c.String("sort"),
				Page:       c.Int("page"),
				PageSize:   c.Int("size"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a capsule by code or id (admin token required)",
		ArgsUsage: "[code]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Usage: "Admin token from 'sealbox login'"},
			&cli.StringFlag{Name: "id", Usage: "Delete by capsule id instead of code"},
		},
		Action: func(c *cli.Context) error {
			input := ops.DeleteInput{
				Credential: c.String("token"),
				ID:         c.String("id"),
			}
			if c.NArg() > 0 {
				input.Code = c.Args().First()
			}
			output, err := svc.Delete(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// loginCmd creates the login command.
func loginCmd(admin *auth.Admin) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Exchange the admin password for a token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "password", Usage: "Admin password (reads stdin when piped)"},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if password == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				password = text
			}
			token, err := admin.Login(password)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]string{"token": token})
		},
	}
}

// outputJSON writes a value as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats an error for the CLI and returns a non-zero exit.
func outputError(err error) error {
	if capErr, ok := err.(*errors.CapsuleError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", capErr.Code, capErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin is piped (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all of stdin and trims surrounding whitespace.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
