// Command taxonres builds, queries, and validates NCBI Taxonomy
// indexes. It downloads taxonomy dumps, compiles them into adjacency
// or interval indexes, persists them as snapshots, and answers
// include/exclude/filter set-algebra searches over them.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/taxonresolver/taxonresolver/core/query"
	"github.com/taxonresolver/taxonresolver/core/resolver"
	"github.com/taxonresolver/taxonresolver/core/snapshot"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
	"github.com/taxonresolver/taxonresolver/internal/download"
	"github.com/taxonresolver/taxonresolver/internal/logging"
	"github.com/taxonresolver/taxonresolver/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for taxonres.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text"`
	LogOutput string `name:"log-output" help:"Also write logs to this file" type:"path"`
	Quiet     bool   `short:"q" help:"Suppress all logging"`

	Download DownloadCmd `cmd:"" help:"Download an NCBI taxonomy dump"`
	Build    BuildCmd    `cmd:"" help:"Build an index from a dump and write a snapshot"`
	Search   SearchCmd   `cmd:"" help:"Search a snapshot with include/exclude/filter sets"`
	Validate ValidateCmd `cmd:"" help:"Check that tax IDs exist in a snapshot"`
	Info     InfoCmd     `cmd:"" help:"Print snapshot metadata"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// setupLogging configures the global logger from the top-level flags.
func setupLogging() (*os.File, error) {
	if CLI.Quiet {
		logging.Disable()
		return nil, nil
	}
	level := logging.ParseLevel(CLI.LogLevel)
	format := logging.ParseFormat(CLI.LogFormat)
	if CLI.LogOutput != "" {
		return logging.InitLoggerWithFile(level, format, CLI.LogOutput)
	}
	logging.InitLogger(level, format)
	return nil, nil
}

// DownloadCmd downloads a taxonomy dump from the NCBI FTP mirror.
type DownloadCmd struct {
	Out     string        `required:"" help:"Output dump path" type:"path"`
	Ext     string        `enum:"zip,tar.gz" default:"zip" help:"Dump archive format (zip, tar.gz)"`
	Timeout time.Duration `default:"30m" help:"Overall download timeout"`
}

func (c *DownloadCmd) Run() error {
	if err := validation.OutputFile(c.Out); err != nil {
		return err
	}
	url, err := download.URLFor(c.Ext)
	if err != nil {
		return err
	}

	logging.Info("downloading taxonomy dump", "url", url, "out", c.Out)
	start := time.Now()
	if err := download.FetchWithTimeout(url, c.Out, c.Timeout); err != nil {
		return err
	}

	info, err := os.Stat(c.Out)
	if err != nil {
		return err
	}
	logging.Info("download complete", "bytes", info.Size(), "elapsed", time.Since(start).Round(time.Second))
	fmt.Printf("Downloaded: %s (%d bytes)\n", c.Out, info.Size())
	return nil
}

// BuildCmd builds an index from a dump and writes a snapshot.
type BuildCmd struct {
	Dump   string `arg:"" help:"Path to taxonomy dump (zip, tar.gz, tar.xz, or nodes.dmp)" type:"existingfile"`
	Out    string `required:"" help:"Output snapshot path" type:"path"`
	Mode   string `enum:"adjacency,interval" default:"interval" help:"Index representation"`
	Format string `help:"Snapshot format (bin, binxz, json, sqlite); default guessed from extension"`
	Root   string `help:"Expected root tax ID (default: first self-parented node)"`
}

func (c *BuildCmd) Run() error {
	if err := validation.InputFile(c.Dump); err != nil {
		return err
	}
	if err := validation.OutputFile(c.Out); err != nil {
		return err
	}
	mode, err := resolver.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	format, err := pickFormat(c.Format, c.Out)
	if err != nil {
		return err
	}

	r, err := resolver.BuildFromDump(c.Dump, resolver.BuildOptions{
		Mode:   mode,
		RootID: taxonomy.TaxonID(c.Root),
	})
	if err != nil {
		return err
	}
	if err := r.Write(c.Out, format); err != nil {
		return err
	}

	report := r.Report()
	fmt.Printf("Built %s index from %s\n", mode, c.Dump)
	fmt.Printf("  Root: %s\n", report.Root)
	fmt.Printf("  Nodes: %d\n", report.Nodes)
	if report.HasAnomalies() {
		fmt.Printf("  Anomalies: %d malformed, %d duplicate, %d orphan, %d unknown rank(s)\n",
			len(report.Malformed), len(report.Duplicates), len(report.Orphans), len(report.UnknownRanks))
	}
	fmt.Printf("Snapshot written: %s (%s)\n", c.Out, format)
	return nil
}

// ListFlags is the shared shape of flags that accept tax IDs inline or
// from a list file.
type ListFlags struct {
	Sep   string `help:"Field separator for ID list files (default: whole line)"`
	Field int    `help:"Zero-based field holding the tax ID after splitting on --sep" default:"0"`
}

func (f *ListFlags) collect(inline []string, file string) ([]taxonomy.TaxonID, error) {
	ids := make([]taxonomy.TaxonID, 0, len(inline))
	for _, s := range inline {
		ids = append(ids, taxonomy.TaxonID(s))
	}
	if file != "" {
		fromFile, err := taxonomy.LoadIDList(file, taxonomy.ListOptions{Sep: f.Sep, Field: f.Field})
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}
	return ids, nil
}

// SearchCmd runs the include/exclude/filter set algebra over a snapshot.
type SearchCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Format   string `help:"Snapshot format; default guessed from extension"`

	Include     []string `help:"Tax IDs whose subtrees seed the result set"`
	IncludeFile string   `help:"File of tax IDs to include" type:"existingfile"`
	Exclude     []string `help:"Tax IDs whose subtrees are removed from the result"`
	ExcludeFile string   `help:"File of tax IDs to exclude" type:"existingfile"`
	Filter      []string `help:"Tax IDs the result is intersected with (no subtree expansion)"`
	FilterFile  string   `help:"File of tax IDs to filter by" type:"existingfile"`

	IgnoreInvalid bool   `help:"Skip unknown tax IDs instead of failing"`
	Out           string `help:"Write matching IDs to this file instead of stdout" type:"path"`

	ListFlags
}

func (c *SearchCmd) Run() error {
	r, err := loadResolver(c.Snapshot, c.Format)
	if err != nil {
		return err
	}

	var req query.Request
	req.IgnoreInvalid = c.IgnoreInvalid
	if req.Include, err = c.collect(c.Include, c.IncludeFile); err != nil {
		return err
	}
	if req.Exclude, err = c.collect(c.Exclude, c.ExcludeFile); err != nil {
		return err
	}
	if req.Filter, err = c.collect(c.Filter, c.FilterFile); err != nil {
		return err
	}
	if len(req.Include) == 0 {
		return fmt.Errorf("no tax IDs to search for (use --include or --include-file)")
	}

	matches, err := r.Search(req)
	if err != nil {
		return err
	}
	logging.Info("search complete", "include", len(req.Include), "exclude", len(req.Exclude),
		"filter", len(req.Filter), "matches", len(matches))

	out := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for _, id := range matches {
		fmt.Fprintln(out, id)
	}
	return nil
}

// ValidateCmd checks that every given tax ID exists in a snapshot.
type ValidateCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Format   string `help:"Snapshot format; default guessed from extension"`

	IDs  []string `help:"Tax IDs to validate"`
	File string   `help:"File of tax IDs to validate" type:"existingfile"`

	ListFlags
}

func (c *ValidateCmd) Run() error {
	r, err := loadResolver(c.Snapshot, c.Format)
	if err != nil {
		return err
	}
	ids, err := c.collect(c.IDs, c.File)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no tax IDs to validate (use --ids or --file)")
	}

	invalid := r.Invalid(ids)
	if len(invalid) == 0 {
		fmt.Printf("VALID: all %d tax ID(s) found\n", len(ids))
		return nil
	}
	fmt.Printf("INVALID: %d of %d tax ID(s) not found:\n", len(invalid), len(ids))
	for _, id := range invalid {
		fmt.Printf("  %s\n", id)
	}
	return fmt.Errorf("%d unknown tax ID(s)", len(invalid))
}

// InfoCmd prints snapshot metadata without restoring the index.
type InfoCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Format   string `help:"Snapshot format; default guessed from extension"`
}

func (c *InfoCmd) Run() error {
	format, err := pickFormat(c.Format, c.Snapshot)
	if err != nil {
		return err
	}
	s, err := snapshot.Read(c.Snapshot, format)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot: %s\n", c.Snapshot)
	fmt.Printf("  ID: %s\n", s.ID)
	fmt.Printf("  Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Variant: %s\n", s.Variant)
	fmt.Printf("  Root: %s\n", s.Root)
	fmt.Printf("  Nodes: %d\n", len(s.Nodes))
	if s.Variant == snapshot.VariantInterval {
		fmt.Printf("  Intervals: %d\n", len(s.Intervals))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("taxonres %s\n", version)
	fmt.Printf("  sqlite driver: %s (%s)\n", snapshot.DriverType(), snapshot.DriverPackage())
	return nil
}

func pickFormat(flag, path string) (snapshot.Format, error) {
	if flag == "" {
		return snapshot.DetectFormat(path), nil
	}
	return snapshot.ParseFormat(flag)
}

func loadResolver(path, formatFlag string) (*resolver.Resolver, error) {
	if err := validation.InputFile(path); err != nil {
		return nil, err
	}
	format, err := pickFormat(formatFlag, path)
	if err != nil {
		return nil, err
	}
	return resolver.LoadSnapshot(path, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("taxonres"),
		kong.Description("NCBI Taxonomy resolver - build, query, and validate taxonomy indexes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logFile, err := setupLogging()
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	err = ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
