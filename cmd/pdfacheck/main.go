// Command pdfacheck parses a PDF file and reports the PDF/A-1b structure
// violations found in it. It exits with status 1 when the file does not
// conform and 2 when it cannot be checked.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/compliance/pdfa"
	"github.com/wudi/pdfaparser/contentstream"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/parser"
	"github.com/wudi/pdfaparser/recovery"
)

type options struct {
	pdfPath string
	json    bool
	strict  bool
	content bool
	verbose bool
}

type result struct {
	File       string      `json:"file"`
	Version    string      `json:"version"`
	Producer   string      `json:"producer,omitempty"`
	Linearized bool        `json:"linearized"`
	Standard   string      `json:"standard"`
	Compliant  bool        `json:"compliant"`
	Violations []violation `json:"violations"`
}

type violation struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfacheck: %v\n", err)
		os.Exit(2)
	}
	compliant, err := run(context.Background(), opts, newLogger(opts.verbose), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfacheck: %v\n", err)
		os.Exit(2)
	}
	if !compliant {
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pdfacheck [flags] <pdf>\n")
		flag.PrintDefaults()
	}
	flag.BoolVar(&opts.json, "json", false, "Print the report as JSON")
	flag.BoolVar(&opts.strict, "strict", false, "Fail on the first broken object instead of replacing it with null")
	flag.BoolVar(&opts.content, "content", false, "Also check hex strings inside page content streams")
	flag.BoolVar(&opts.verbose, "v", false, "Log parser diagnostics at debug level")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing pdf path")
	}
	opts.pdfPath = flag.Arg(0)
	return opts, nil
}

// newLogger writes text to a terminal and JSON lines otherwise.
func newLogger(verbose bool) observability.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(os.Stderr, hopts)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h = slog.NewTextHandler(os.Stderr, hopts)
	}
	return observability.NewSlogLogger(slog.New(h))
}

func run(ctx context.Context, opts options, log observability.Logger, out io.Writer) (bool, error) {
	f, err := os.Open(opts.pdfPath)
	if err != nil {
		return false, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat pdf: %w", err)
	}

	cfg := parser.Config{
		Policy: pdfa.StrictPolicy{},
		Logger: log.With(observability.String("file", opts.pdfPath)),
	}
	if opts.strict {
		cfg.Recovery = recovery.NewStrictStrategy()
	}
	doc, err := parser.NewDocumentParser(cfg).Parse(ctx, f, info.Size())
	if err != nil {
		return false, err
	}
	// Object level clauses are only measured once every object is parsed.
	if err := doc.ResolveAll(ctx); err != nil {
		return false, err
	}

	if opts.content {
		checker := contentstream.NewChecker(contentstream.Config{Policy: pdfa.StrictPolicy{}, Logger: cfg.Logger})
		stats, err := checker.CheckPages(ctx, doc, doc.Records)
		if err != nil {
			log.Warn("content streams not fully checked", observability.Error("error", err))
		}
		log.Debug("content streams checked",
			observability.Int("pages", stats.Pages),
			observability.Int("streams", stats.Streams),
			observability.Int("hex_strings", stats.HexStrings))
	}

	report, err := pdfa.Validate(ctx, doc.Records)
	if err != nil {
		return false, err
	}
	res := newResult(ctx, opts.pdfPath, doc, report)
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return report.Compliant, enc.Encode(res)
	}
	return report.Compliant, printText(out, res)
}

func newResult(ctx context.Context, path string, doc *parser.Document, report *compliance.Report) result {
	res := result{
		File:       path,
		Version:    doc.Version,
		Producer:   producer(ctx, doc),
		Linearized: doc.Linearized,
		Standard:   report.Standard,
		Compliant:  report.Compliant,
		Violations: make([]violation, 0, len(report.Violations)),
	}
	for _, v := range report.Violations {
		res.Violations = append(res.Violations, violation{Code: v.Code, Description: v.Description, Location: v.Location})
	}
	return res
}

// producer reads /Producer from the document information dictionary.
func producer(ctx context.Context, doc *parser.Document) string {
	trailer := doc.FirstTrailer
	if trailer == nil {
		trailer = doc.LastTrailer
	}
	if trailer == nil {
		return ""
	}
	infoRef, ok := trailer.Get(raw.NameLiteral("Info"))
	if !ok {
		return ""
	}
	obj, err := doc.Deref(ctx, infoRef)
	if err != nil {
		return ""
	}
	info, ok := obj.(*raw.DictObj)
	if !ok {
		return ""
	}
	v, ok := info.Get(raw.NameLiteral("Producer"))
	if !ok {
		return ""
	}
	if v, err = doc.Deref(ctx, v); err != nil {
		return ""
	}
	s, ok := v.(raw.StringObj)
	if !ok {
		return ""
	}
	return s.Text()
}

func printText(w io.Writer, res result) error {
	status := "conforms to"
	if !res.Compliant {
		status = "does not conform to"
	}
	if _, err := fmt.Fprintf(w, "%s: PDF %s %s %s\n", res.File, res.Version, status, res.Standard); err != nil {
		return err
	}
	if res.Producer != "" {
		fmt.Fprintf(w, "  producer: %s\n", res.Producer)
	}
	if res.Linearized {
		fmt.Fprintf(w, "  linearized\n")
	}
	for _, v := range res.Violations {
		if _, err := fmt.Fprintf(w, "  %-8s %s (%s)\n", v.Code, v.Description, v.Location); err != nil {
			return err
		}
	}
	return nil
}
