// Command chunkstat splits a document into structural chunks and prints
// their size statistics.
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
	"text/tabwriter"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/report"
	"github.com/dgallion1/docchunk/internal/tokenizer"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "chunkstat:", err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chunkstat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the full analysis as JSON")
	chunkN := fs.Int("chunk", 0, "write the text bundle for chunk `N` (1-based)")
	encoding := fs.String("encoding", tokenizer.DefaultEncoding, "tiktoken encoding used for token counts")
	pdftotext := fs.Bool("pdftotext", true, "fall back to pdftotext for PDFs the built-in reader cannot handle")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: chunkstat [flags] FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}
	path := fs.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	analyzer := pipeline.NewAnalyzer(
		tokenizer.New(*encoding, log),
		parser.Options{PDFFallbackPdftotext: *pdftotext},
		8,
		nil,
		log,
	)
	res, err := analyzer.Analyze(context.Background(), filepath.Base(path), data, nil)
	if errors.Is(err, chunker.ErrNoStructure) {
		return fmt.Errorf("%s: %w (expected CHAPTER n, UNIT n: or numbered section headings)", path, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	switch {
	case *chunkN != 0:
		if *chunkN < 1 || *chunkN > len(res.Chunks) {
			return fmt.Errorf("chunk %d out of range (1-%d)", *chunkN, len(res.Chunks))
		}
		i := *chunkN - 1
		return report.WriteBundle(stdout, res.Report.Chunks[i], res.Chunks[i])
	case *asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printTables(stdout, res)
}

func printTables(w io.Writer, res *pipeline.Analysis) error {
	rep := res.Report
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%s: %d chunks (%s)\n\n", res.Filename, rep.Totals.Chunks, rep.Encoding)

	fmt.Fprintln(tw, "#\tKind\tTitle\tChapter\tChars\tWords\tTokens\tSection avg\t")
	for i, st := range rep.Chunks {
		c := res.Chunks[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t\n",
			st.Index,
			c.Metadata.Kind,
			truncate(report.DisplayTitle(c), 40),
			orDash(c.Chapter),
			report.FormatInt(st.Chars),
			report.FormatInt(st.Words),
			report.FormatInt(st.Tokens),
			st.SectionAvgTokens,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nSection averages")
	for _, sa := range rep.Sections {
		fmt.Fprintf(tw, "%s\t%d chunks\t%.1f tokens\t\n", truncate(sa.Section, 40), sa.Chunks, sa.AvgTokens)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := rep.Totals
	_, err := fmt.Fprintf(w, "\nTotal chunks: %s\nTotal tokens: %s\nAverage tokens per chunk: %.1f\n",
		report.FormatInt(t.Chunks), report.FormatInt(t.Tokens), t.AvgTokensPerChunk)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
