package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/pkg/logger"
)

const usage = `Usage: admin <command> [flags]

Commands:
  login    store a catalog API token
  logout   forget the stored token
  list     browse the catalog
  create   create a product
  edit     update a product: edit <id> [flags]
  delete   delete a product: delete <id> [--yes]

Run "admin <command> --help" for the flags of a command.
`

// console carries what every command needs
type console struct {
	client *gateway.Client
	tokens auth.TokenStore
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

type command func(ctx context.Context, c *console, args []string) error

var commands = map[string]command{
	"login":  runLogin,
	"logout": runLogout,
	"list":   runList,
	"create": runCreate,
	"edit":   runEdit,
	"delete": runDelete,
}

func main() {
	logger.InitWithWriter("storefront-admin", true, os.Stderr)
	logger.SetLevel(getEnv("LOG_LEVEL", "warn"))

	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	c, err := newConsole()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}

func newConsole() (*console, error) {
	tokenPath := getEnv("STOREFRONT_TOKEN_FILE", "")
	if tokenPath == "" {
		path, err := auth.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		tokenPath = path
	}
	tokens := auth.NewFileTokenStore(tokenPath)

	timeout, err := time.ParseDuration(getEnv("CATALOG_API_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	client := gateway.NewClient(gateway.Config{
		BaseURLs: strings.Split(getEnv("CATALOG_API_URLS", gateway.DefaultBaseURL), ","),
		Timeout:  timeout,
	}, tokens)

	return &console{client: client, tokens: tokens, in: os.Stdin, out: os.Stdout, errOut: os.Stderr}, nil
}

// describe turns an error into the line shown to the operator
func describe(err error) string {
	var (
		validationErr *form.ValidationError
		uploadErr     *form.UploadError
	)
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("%s (%s)", validationErr.Message, validationErr.Field)
	case errors.As(err, &uploadErr):
		return uploadErr.Message
	case errors.Is(err, form.ErrCancelled):
		return "Delete cancelled."
	case errors.Is(err, gateway.ErrCircuitOpen):
		return "Catalog API is unavailable, try again shortly."
	}

	var gatewayErr *gateway.GatewayError
	if errors.As(err, &gatewayErr) || errors.Is(err, gateway.ErrInvalidArgument) {
		return gateway.Message(err, gateway.FallbackRequestFailed)
	}
	return err.Error()
}

// imageStore is only needed when a command uploads an image
func imageStore(ctx context.Context) (media.Store, func(), error) {
	bucket := getEnv("MEDIA_BUCKET", "")
	if bucket == "" {
		return nil, func() {}, errors.New("--image requires MEDIA_BUCKET to be set")
	}
	return openBucket(ctx, bucket)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
