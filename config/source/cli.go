package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// CLISource loads configuration from dot-notated command-line flags:
//
//	--server.addr=:9090 --database.path mosaic.db
//	  -> {server: {addr: ":9090"}, database: {path: "mosaic.db"}}
//
// It should be the last source in the chain so flags override files and the
// environment. Flags the source does not recognize are ignored rather than
// rejected, since the hosting command owns the real flag set.
type CLISource struct {
	// Args are the raw arguments to parse; nil means no flags were given.
	Args []string
}

func (c *CLISource) Name() string { return "cli" }

func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	if len(c.Args) == 0 {
		return result, nil
	}

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Register every dotted flag we see so pflag will accept it.
	registered := map[string]bool{}
	for i := 0; i < len(c.Args); i++ {
		arg := c.Args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := flagName(arg)
		if name == "" || registered[name] {
			continue
		}
		fs.String(name, "", fmt.Sprintf("config value for %s", name))
		registered[name] = true
	}
	_ = fs.Parse(c.Args)

	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed || f.Value.String() == "" {
			return
		}
		setNested(result, strings.Split(f.Name, "."), f.Value.String())
	})
	return result, nil
}

func flagName(arg string) string {
	arg = strings.TrimLeft(arg, "-")
	if idx := strings.Index(arg, "="); idx != -1 {
		arg = arg[:idx]
	}
	return arg
}
