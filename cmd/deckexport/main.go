package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	deckexport "github.com/VantageDataChat/GoDeckExport"
	"github.com/VantageDataChat/GoDeckExport/httpexport"
	"github.com/VantageDataChat/GoDeckExport/pptx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "deckexport",
		Short:         "Export slide decks to PDF, reveal.js HTML, PowerPoint and PNG images",
		Long:          "Converts an editor snapshot (JSON or YAML) of an 800x450 slide deck into distributable files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "YAML config file")
	pf.StringP("out", "o", ".", "Output directory")
	pf.String("filename", "", "Artifact file name (default: <title>.<ext>)")
	pf.Float64("scale", 2, "Raster oversampling factor for PDF and images")
	pf.StringSlice("font-dir", nil, "Additional font directory (repeatable)")
	pf.String("reveal-version", deckexport.DefaultRevealVersion, "reveal.js release referenced by HTML exports")
	pf.String("page-format", "A4", "PDF page size")
	pf.String("base-dir", "", "Directory relative image paths are resolved against")
	pf.BoolP("quiet", "q", false, "Only print warnings and errors")

	rootCmd.AddCommand(
		newExportCmd(deckexport.FormatPDF, "Export a raster PDF, one page per slide"),
		newExportCmd(deckexport.FormatHTML, "Export a reveal.js slideshow"),
		newExportCmd(deckexport.FormatPPTX, "Export an editable PowerPoint document"),
		newExportCmd(deckexport.FormatImages, "Export one PNG per slide"),
		newAllCmd(),
		newInspectCmd(),
		newServeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("deckexport version %s\n", deckexport.Version)
			},
		},
	)
	return rootCmd
}

// env is the resolved configuration of one command invocation.
type env struct {
	cfg  *Config
	opts *deckexport.Options
	log  *cliLogger
}

func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.merge(cmd); err != nil {
		return nil, err
	}
	log := &cliLogger{quiet: cfg.Quiet}
	return &env{cfg: cfg, opts: cfg.options(log), log: log}, nil
}

func newExportCmd(format deckexport.Format, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(format) + " <snapshot>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := deckexport.ReadPresentation(args[0])
			if err != nil {
				return err
			}
			extract, _ := cmd.Flags().GetBool("extract")
			return e.export(cmd.Context(), format, e.opts, p, extract)
		},
	}
	if format == deckexport.FormatImages {
		cmd.Flags().Bool("extract", false, "Write the PNG files into a directory instead of a zip bundle")
	}
	return cmd
}

func (e *env) export(ctx context.Context, format deckexport.Format, opts *deckexport.Options, p *deckexport.Presentation, extract bool) error {
	x, err := deckexport.NewExporter(format, opts)
	if err != nil {
		return err
	}
	a, err := x.Export(ctx, p)
	if err != nil {
		return err
	}

	var where string
	if extract {
		dir := filepath.Join(e.cfg.OutDir, strings.TrimSuffix(a.Filename, filepath.Ext(a.Filename)))
		if _, err := a.Extract(dir); err != nil {
			return err
		}
		where = dir
	} else if where, err = a.Save(e.cfg.OutDir); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("✓ %s: %s (%d page(s), %d warning(s))\n", format, where, a.Pages, len(a.Warnings))
	return nil
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all <snapshot>",
		Short: "Export every format concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := deckexport.ReadPresentation(args[0])
			if err != nil {
				return err
			}
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, f := range deckexport.Formats() {
				f := f
				opts := *e.opts
				if opts.Filename != "" {
					opts.Filename = strings.TrimSuffix(opts.Filename, filepath.Ext(opts.Filename)) + "." + f.Extension()
				}
				g.Go(func() error {
					return e.export(ctx, f, &opts, p, false)
				})
			}
			return g.Wait()
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pptx>",
		Short: "Summarize an exported PowerPoint document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pres, err := pptx.Open(args[0])
			if err != nil {
				return err
			}
			inspect(cmd.OutOrStdout(), pres)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve exports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:              e.cfg.Addr,
				Handler:           httpexport.NewHandler(e.opts).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				e.log.Infof("Listening on http://%s", e.cfg.Addr)
				errc <- server.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			e.log.Infof("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "localhost:8080", "Listen address")
	return cmd
}
