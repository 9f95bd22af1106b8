// Command wsfetch fetches one catalog endpoint and prints the result as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	wsdot "github.com/ferryline/wsdot"
	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/observability"
	"github.com/ferryline/wsdot/internal/wsdate"
	"github.com/ferryline/wsdot/lib/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	accessCode := flag.String("access-code", "", "WSDOT API access code (defaults to WSDOT_ACCESS_CODE)")
	configPath := flag.String("config", "", "optional YAML configuration file")
	forceRelay := flag.Bool("force-relay", false, "force the script-relay transport")
	validate := flag.Bool("validate", false, "run the endpoint's declared validators")
	bypass := flag.Bool("bypass-cache", false, "skip the cache for this fetch")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline for the fetch")
	list := flag.Bool("list", false, "list catalog endpoints and exit")
	verbose := flag.Bool("verbose", false, "log pipeline activity to stderr")
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		observability.SetLogger(observability.NewZerologWriter(os.Stderr))
	}

	cfg := config.FromEnv()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wsfetch: load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	opts := []config.Option{config.WithForceRelay(*forceRelay)}
	if *accessCode != "" {
		opts = append(opts, config.WithAccessCode(*accessCode))
	}
	cfg = config.Apply(cfg, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	if _, shutdown, err := telemetry.Init(ctx, cfg.Telemetry); err != nil {
		fmt.Fprintf(os.Stderr, "wsfetch: telemetry: %v\n", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	client := wsdot.New(cfg)
	defer client.Close()

	if *list {
		listEndpoints(client)
		return 0
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		return 2
	}
	endpointID := args[0]
	params, err := parseParams(args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wsfetch: %v\n", err)
		return 2
	}

	out, err := client.Fetch(ctx, endpointID, params, wsdot.FetchOptions{
		Validate: *validate,
		Bypass:   *bypass,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wsfetch: %v\n", err)
		return 1
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "wsfetch: encode result: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: wsfetch [flags] <family/endpoint> [key=value ...]

Fetches one catalog endpoint from the WSF/WSDOT REST APIs and prints the
result as JSON. Parameter values parse as bool, int, or YYYY-MM-DD date
before falling back to string.

Flags:
`)
	flag.PrintDefaults()
}

func listEndpoints(client *wsdot.Client) {
	for _, desc := range client.Endpoints() {
		fmt.Printf("%-28s %-9s %s\n", desc.ID(), desc.Policy, desc.Description)
	}
}

// parseParams turns key=value arguments into typed parameter values.
func parseParams(args []string) (wsdot.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(wsdot.Params, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed parameter %q, want key=value", arg)
		}
		params[key] = coerce(raw)
	}
	return params, nil
}

func coerce(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if t, ok := wsdate.Parse(raw); ok {
		return t
	}
	return raw
}
