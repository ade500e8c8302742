// Command supplystatus evaluates a supply profile document and prints the
// parsed profile with its derived status.
//
// Usage:
//
//	supplystatus [-json] [-yaml] [-at YYYY-MM-DD] [-v] [file]
//
// The document is read from file, or from standard input when file is absent
// or "-". Files ending in .yaml or .yml, and standard input with -yaml, are
// read as YAML. Limits and the calendar time zone come from the same SUPPLY_*
// environment as the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/config"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
	"github.com/example/water-supply/internal/supply"
	"gopkg.in/yaml.v3"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("supplystatus", flag.ContinueOnError)
	flags.SetOutput(stderr)
	asJSON := flags.Bool("json", false, "print the report as JSON")
	atValue := flags.String("at", "", "reference date (YYYY-MM-DD); defaults to today")
	verbose := flags.Bool("v", false, "log evaluation details to stderr")
	yamlInput := flags.Bool("yaml", false, "read the document as YAML")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "supplystatus: at most one document path may be given")
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "supplystatus: %v\n", err)
		return exitError
	}

	var at *time.Time
	if value := strings.TrimSpace(*atValue); value != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, value, cfg.Location)
		if err != nil {
			fmt.Fprintf(stderr, "supplystatus: invalid -at %q: want YYYY-MM-DD\n", value)
			return exitUsage
		}
		at = &parsed
	}

	raw, err := readInput(flags.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "supplystatus: %v\n", err)
		return exitError
	}
	if *yamlInput || isYAMLPath(flags.Arg(0)) {
		if raw, err = yamlToJSON(raw); err != nil {
			fmt.Fprintf(stderr, "supplystatus: %s\n", describeError(err))
			return exitError
		}
	}

	policy, err := cfg.LimitPolicy()
	if err != nil {
		fmt.Fprintf(stderr, "supplystatus: %v\n", err)
		return exitError
	}

	logOutput := io.Discard
	if *verbose {
		logOutput = stderr
	}
	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: cfg.LogLevel}))

	service := application.NewSupplyService(nil,
		status.NewResolver(status.WithLimitPolicy(policy)),
		recurrence.NewEngine(cfg.Location),
		application.Options{Location: cfg.Location, Logger: logger},
	)

	result, err := service.EvaluateDocument(context.Background(), raw, at)
	if err != nil {
		fmt.Fprintf(stderr, "supplystatus: %s\n", describeError(err))
		return exitError
	}

	if *asJSON {
		err = writeJSON(stdout, result)
	} else {
		err = writeReport(stdout, result)
	}
	if err != nil {
		fmt.Fprintf(stderr, "supplystatus: %v\n", err)
		return exitError
	}
	return exitOK
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML mapping as JSON so it goes through the same
// decoder as every other document.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &supply.MalformedDocumentError{Err: err}
	}
	if doc == nil {
		return nil, &supply.MalformedDocumentError{Err: errors.New("document must be a mapping")}
	}
	out, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, &supply.MalformedDocumentError{Err: err}
	}
	return out, nil
}

// jsonCompatible rewrites YAML mappings with non-string keys (e.g. {1: 2})
// into string-keyed maps, so a stray schedule element is dropped by the
// parser instead of failing the encoding of the whole document.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = jsonCompatible(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonCompatible(item)
		}
		return out
	default:
		return v
	}
}

func describeError(err error) string {
	var malformed *supply.MalformedDocumentError
	switch {
	case errors.As(err, &malformed) && malformed.Field != "":
		return fmt.Sprintf("malformed document: field %s: %v", malformed.Field, err)
	case errors.Is(err, supply.ErrMalformedDocument):
		return fmt.Sprintf("malformed document: %v", err)
	case errors.Is(err, supply.ErrInvalidValidityWindow):
		return fmt.Sprintf("cannot resolve status: %v", err)
	default:
		return err.Error()
	}
}

type jsonReport struct {
	Profile supply.Profile     `json:"profile"`
	Status  status.Status      `json:"status"`
	Report  supply.ParseReport `json:"report"`
}

func writeJSON(w io.Writer, result application.Evaluation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Profile: result.Profile, Status: result.Status, Report: result.Report})
}

func writeReport(w io.Writer, result application.Evaluation) error {
	st := result.Status
	profile := result.Profile

	activity := "inactive"
	if st.Active {
		activity = "active"
	}
	schedule := fmt.Sprintf("default, %dh from %s", st.CurrentSupplyDuration, st.CurrentSupplyStartTime)
	if st.CurrentScheduleID > 0 && st.CurrentScheduleID <= len(profile.Schedules) {
		entry := profile.Schedules[st.CurrentScheduleID-1]
		schedule = fmt.Sprintf("%d (%s, %dh from %s)", st.CurrentScheduleID, entry.Day, st.CurrentSupplyDuration, st.CurrentSupplyStartTime)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "House:\t%s\n", st.HouseID)
	fmt.Fprintf(tw, "Transaction:\t%s\n", st.CurrentTransactionID)
	fmt.Fprintf(tw, "Stack level:\t%d\n", profile.StackLevel)
	fmt.Fprintf(tw, "Supply kind:\t%s\n", profile.SupplyKind)
	fmt.Fprintf(tw, "Validity:\t%s\n", st.ReferenceDateTime)
	fmt.Fprintf(tw, "Reference date:\t%s (%s)\n", st.ReferenceDate.Format(time.DateOnly), activity)
	fmt.Fprintf(tw, "Schedule:\t%s\n", schedule)
	fmt.Fprintf(tw, "Limit:\t%d %s\n", st.LimitValue, st.LimitType)
	fmt.Fprintf(tw, "Skipped entries:\t%d\n", len(result.Report.Skipped))
	for _, skipped := range result.Report.Skipped {
		fmt.Fprintf(tw, "  #%d:\t%s\n", skipped.Index, skipped.Reason)
	}
	return tw.Flush()
}
