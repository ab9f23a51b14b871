package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

var log = commonlog.GetLogger("autoqasm.cmd")

func main() {
	configPath := flag.String("config", "", "Configuration file (default: nearest autoqasm.toml)")
	programName := flag.String("program", "", "Only build the named program")
	printMode := flag.Bool("print", false, "Build the programs and print them instead of starting the previewer")
	outPath := flag.String("o", "", "Output file for -print (default: [output] path, or stdout)")
	verbosity := flag.Int("v", 0, "Log verbosity, 2 for debug (default: [log] verbosity)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: autoqasm [options]\n\n")
		fmt.Fprintf(os.Stderr, "Builds the bundled AutoQASM programs and previews their OpenQASM 3.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  autoqasm                          # Start the previewer\n")
		fmt.Fprintf(os.Stderr, "  autoqasm -print                   # Print every program\n")
		fmt.Fprintf(os.Stderr, "  autoqasm -print -program bell     # Print one program\n")
		fmt.Fprintf(os.Stderr, "  autoqasm -print -o out.cbor       # Write artifacts ([output] format = \"cbor\")\n")
	}
	flag.Parse()

	var verbosityFlag *int
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			verbosityFlag = verbosity
		}
	})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	configureLogging(cfg, verbosityFlag, *printMode)

	demos := builtinDemos()
	if *programName != "" {
		d, ok := findDemo(demos, *programName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown program %q (have %s)\n", *programName, demoNames(demos))
			os.Exit(1)
		}
		demos = []demo{d}
	}

	if *printMode {
		if err := printPrograms(demos, cfg, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(initialModel(demos, cfg.UserConfig()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*autoqasm.Config, error) {
	if path != "" {
		return autoqasm.LoadConfig(path)
	}
	cfg, err := autoqasm.FindConfig(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return autoqasm.DefaultConfig(), nil
	}
	return cfg, nil
}

// configureLogging sets up the commonlog backend. The previewer owns the
// terminal, so without a log file it only logs when -v is given.
func configureLogging(cfg *autoqasm.Config, flagVerbosity *int, batch bool) {
	verbosity := cfg.Log.Verbosity
	switch {
	case flagVerbosity != nil:
		verbosity = *flagVerbosity
	case !batch && cfg.Log.File == "":
		verbosity = -5 // below critical: nothing is logged
	}
	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(verbosity, path)
}

func demoNames(demos []demo) string {
	names := make([]string, len(demos))
	for i, d := range demos {
		names[i] = d.name
	}
	return strings.Join(names, ", ")
}

// printPrograms builds demos and writes them in the configured format.
func printPrograms(demos []demo, cfg *autoqasm.Config, outPath string) error {
	results := buildAll(demos, cfg.UserConfig())
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if outPath == "" {
		outPath = cfg.Output.Path
	}
	if outPath == "" {
		return writePrograms(os.Stdout, results, cfg.Output.Format)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := writePrograms(f, results, cfg.Output.Format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("wrote %d programs to %s", len(results), outPath)
	return nil
}

// writePrograms writes OpenQASM text, one program after another, or a CBOR
// artifact (an array of artifacts for several programs).
func writePrograms(w io.Writer, results []buildResult, format string) error {
	switch format {
	case "cbor":
		artifacts := make([]*autoqasm.Artifact, len(results))
		for i, r := range results {
			artifacts[i] = r.prog.Artifact(r.name)
		}
		var data []byte
		var err error
		if len(artifacts) == 1 {
			data, err = autoqasm.MarshalArtifact(artifacts[0])
		} else {
			data, err = autoqasm.MarshalArtifacts(artifacts)
		}
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	case "qasm", "":
		for i, r := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "// %s\n", r.name)
			}
			if _, err := io.WriteString(w, r.ir); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}
