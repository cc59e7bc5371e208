package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Render UGC reports offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newFilenameCmd())
	return root
}

type renderFlags struct {
	in          string
	out         string
	format      string
	pageSize    string
	attribution string
	verbose     bool
}

func newRenderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report JSON export as pdf, csv or json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.in, "in", "i", "-", "report JSON file, - for stdin")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file or directory (default: generated filename in the current directory)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "pdf", "output format: pdf, csv or json")
	cmd.Flags().StringVar(&f.pageSize, "page-size", "A4", "page size: A4 or Letter")
	cmd.Flags().StringVar(&f.attribution, "attribution", "Generated by UGC Dashboard", "footer attribution line")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")

	return cmd
}

func runRender(cmd *cobra.Command, f renderFlags) error {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Format: "console"}, cmd.ErrOrStderr())

	format, err := document.ParseFormat(f.format)
	if err != nil {
		return err
	}
	size, err := document.ParsePageSize(f.pageSize)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd.InOrStdin(), f.in)
	if err != nil {
		return err
	}
	report, err := document.ParseJSON(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", f.in, err)
	}

	builder := document.NewBuilder(
		document.WithPageSize(size),
		document.WithAttribution(f.attribution),
		document.WithLogger(logger),
	)
	artifact, err := builder.Build(cmd.Context(), report, format, "")
	if err != nil {
		return err
	}

	path := outputPath(f.out, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("bytes", len(artifact.Data)).Msg("document written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" || path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func outputPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

func newFilenameCmd() *cobra.Command {
	var (
		title string
		ext   string
		date  string
	)

	cmd := &cobra.Command{
		Use:   "filename",
		Short: "Print the download filename for a report title",
		RunE: func(cmd *cobra.Command, _ []string) error {
			at := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				at = parsed
			}
			fmt.Fprintln(cmd.OutOrStdout(), document.Filename(title, at, ext))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")
	cmd.Flags().StringVarP(&ext, "ext", "e", "pdf", "file extension")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date in YYYY-MM-DD (default: today, UTC)")

	return cmd
}
