package main

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/graphbind"
	"github.com/hanpama/graphbind/internal/discovery"
	"github.com/hanpama/graphbind/internal/eventbus"
	"github.com/hanpama/graphbind/internal/otel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const rootUsage = `graphbind: execute GraphQL queries against bound Go values

USAGE:
  graphbind <command> [flags]

COMMANDS:
  exec             Execute a query against a schema and a data file
  check            Compile a schema and report binding problems
  print-schema     Print the normalized SDL of a schema
  help             Show help for any command
`

const commonFlags = `  -log.level <level>        debug, info, warn or error (default: warn)
  -log.format <format>      console or json (default: console)
`

const execUsage = `exec FLAGS:
  -schema <path>            GraphQL SDL file or directory (required)
  -query <file>             Query document (required)
  -data <file>              YAML or JSON file; its top-level mapping resolves Query fields
  -operation <name>         Operation to run when the document has several
  -variables <json>         Variables as a JSON object
  -pretty                   Indent the JSON result
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: graphbind)
` + commonFlags

const checkUsage = `check FLAGS:
  -schema <path>            GraphQL SDL file or directory (required)
  -data <file>              YAML or JSON file used as the Query resolver
  (Exits non-zero when the schema does not compile)
` + commonFlags

const printSchemaUsage = `print-schema FLAGS:
  -schema <path>            GraphQL SDL file or directory (required)
  -out <file>               Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphbind", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer))
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return errors.New("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "exec":
		return cmdExec(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "print-schema":
		return cmdPrintSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(stderr, rootUsage)
		return errors.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "exec":
		fmt.Fprint(stdout, execUsage)
	case "check":
		fmt.Fprint(stdout, checkUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return errors.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type logFlags struct {
	level  string
	format string
}

func (l *logFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.level, "log.level", "warn", "Log level")
	fs.StringVar(&l.format, "log.format", "console", "Log format")
}

func (l *logFlags) logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(l.level)
	if err != nil {
		return nil, err
	}
	var cfg zap.Config
	switch l.format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, errors.Errorf("unknown log format %q", l.format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func cmdExec(args []string) error {
	schemaFile := ""
	queryFile := ""
	dataFile := ""
	operation := ""
	variables := ""
	pretty := false
	otelEndpoint := ""
	otelService := "graphbind"
	var lf logFlags

	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.StringVar(&queryFile, "query", queryFile, "Query document")
	fs.StringVar(&dataFile, "data", dataFile, "YAML or JSON data file")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.StringVar(&variables, "variables", variables, "Variables as JSON")
	fs.BoolVar(&pretty, "pretty", pretty, "Indent the JSON result")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, execUsage)
		return err
	}
	if schemaFile == "" || queryFile == "" {
		fmt.Fprint(stderr, execUsage)
		return errors.New("-schema and -query are required")
	}

	logger, err := lf.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return errors.Wrap(err, "otel setup")
	}
	defer func() { _ = shutdown(context.Background()) }()

	s, err := compileFiles(schemaFile, dataFile, logger)
	if err != nil {
		return err
	}
	query, err := os.ReadFile(queryFile)
	if err != nil {
		return err
	}
	var vars map[string]any
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &vars); err != nil {
			return errors.Wrap(err, "parse -variables")
		}
	}

	res := s.Execute(context.Background(), string(query), operation, vars)
	out, err := res.JSON()
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	if pretty {
		var buf bytes.Buffer
		if err := stdjson.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		out = buf.Bytes()
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}

func cmdCheck(args []string) error {
	schemaFile := ""
	dataFile := ""
	var lf logFlags
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.StringVar(&dataFile, "data", dataFile, "YAML or JSON data file")
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, checkUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, checkUsage)
		return errors.New("-schema is required")
	}
	logger, err := lf.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s, err := compileFiles(schemaFile, dataFile, logger)
	if err != nil {
		var se *graphbind.SchemaError
		if errors.As(err, &se) {
			for _, m := range se.Messages {
				fmt.Fprintln(stderr, m)
			}
		}
		return err
	}
	for _, b := range s.Bindings() {
		fmt.Fprintln(stdout, b)
	}
	return nil
}

func cmdPrintSchema(args []string) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, printSchemaUsage)
		return errors.New("-schema is required")
	}
	s, err := compileFiles(schemaFile, "", zap.NewNop())
	if err != nil {
		return err
	}
	sdl := s.SDL()
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

// compileFiles compiles the SDL found at schemaFile, a file or a directory,
// with the mapping in dataFile as the Query resolver. Without a data file
// every root field is a key lookup that finds nothing.
func compileFiles(schemaFile, dataFile string, logger *zap.Logger) (*graphbind.Schema, error) {
	sdl, err := discovery.LoadPath(context.Background(), schemaFile)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if dataFile != "" {
		if data, err = loadData(dataFile); err != nil {
			return nil, err
		}
	}
	resolvers := []graphbind.Resolver{graphbind.Query(data)}
	return graphbind.Compile(sdl, resolvers, nil, graphbind.WithLogger(logger))
}

// loadData reads a YAML document; JSON is accepted as a YAML subset.
func loadData(name string) (map[string]any, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}
	return data, nil
}
