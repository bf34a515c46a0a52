// Command catalog inspects the catalog collections offline: it validates
// stored records against the schema and lists them through the same filter
// and sort logic the browse pages use.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/media-catalog/internal/catalog"
	"github.com/vyrodovalexey/media-catalog/internal/schema"
	"github.com/vyrodovalexey/media-catalog/internal/store"
)

type Globals struct {
	Gateway *catalog.Gateway
	Out     io.Writer
	Locale  language.Tag
}

type CLI struct {
	Validate ValidateCmd `cmd:"" help:"Validate every record of a category"`
	List     ListCmd     `cmd:"" aliases:"ls" help:"List the records of a category"`

	DataDir string `name:"data-dir" short:"d" env:"APP_DATA_DIR" default:"./data" help:"Directory holding the category JSON files"`
	Locale  string `env:"APP_COLLATE_LOCALE" default:"und" help:"BCP 47 locale used to collate titles"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`
}

func (c *CLI) AfterApply(ctx *kong.Context) error {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}

	fs, err := store.NewFileStore(c.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	logger, err := newLogger(c.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	globals := &Globals{
		Gateway: catalog.NewGateway(fs, schema.New(nil), logger),
		Out:     os.Stdout,
		Locale:  tag,
	}
	ctx.Bind(globals)
	return nil
}

// newLogger builds a console logger on stderr so stdout stays clean for output.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("catalog"),
		kong.Description("Validate and browse the media catalog collections"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
