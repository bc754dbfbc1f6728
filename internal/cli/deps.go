package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/dayoung-oh/lunchspin/internal/config"
	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/session"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.Location, error)
	Get(ctx context.Context, address string) (domain.Location, error)
}

// ConfigManager stores host default settings.
type ConfigManager interface {
	Path() string
	Load(ctx context.Context) (config.Config, error)
	Save(ctx context.Context, cfg config.Config) error
}

// Dependencies wires runtime services.
type Dependencies struct {
	Session   *session.Session
	Geocode   Geocoder
	Snapshots session.Store
	Config    ConfigManager
	Version   string
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || err == errVersionShown {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
