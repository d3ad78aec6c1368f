package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrlogo/internal/compositor"
	"github.com/cristianadrielbraun/qrlogo/internal/config"
	"github.com/cristianadrielbraun/qrlogo/internal/generator"
	"github.com/cristianadrielbraun/qrlogo/internal/handlers"
	"github.com/cristianadrielbraun/qrlogo/internal/logger"
	"github.com/cristianadrielbraun/qrlogo/internal/qrgen"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

var version = "v0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "qrlogo",
		Short: "QR code generator with centered logo overlays",
	}

	// --- serve command -------------------------------------------------------
	var envFile string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile)
		},
	}
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional .env file")
	root.AddCommand(serveCmd)

	// --- generate command ----------------------------------------------------
	var (
		req  generator.Request
		opts generateOptions
	)
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a single QR code to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.InputType = validate.ParseInputType(opts.inputType)
			req.Format = generator.ParseFormat(opts.format)
			req.Shape = qrgen.ParseShape(opts.shape)
			return runGenerate(cmd.Context(), req, opts)
		},
	}
	f := genCmd.Flags()
	f.StringVarP(&req.Data, "data", "d", "", "URL or text to encode")
	f.StringVar(&opts.inputType, "type", "url", "Input type: url or text")
	f.StringVarP(&opts.format, "format", "f", "png", "Output format: png, jpg or svg")
	f.IntVarP(&req.Size, "size", "s", generator.DefaultSize, "Image size in pixels")
	f.StringVar(&req.Foreground, "fg", generator.DefaultForeground, "Foreground color")
	f.StringVar(&req.Background, "bg", generator.DefaultBackground, "Background color, or transparent")
	f.StringVar(&req.ColorMode, "color-mode", "flat", "Foreground mode: flat or gradient")
	f.StringVar(&req.GradientStart, "gradient-start", "", "Gradient start color")
	f.StringVar(&req.GradientMiddle, "gradient-middle", "", "Gradient middle color")
	f.StringVar(&req.GradientEnd, "gradient-end", "", "Gradient end color")
	f.StringVar(&opts.shape, "shape", "rectangle", "Module shape: rectangle, circle, liquid, chain, hstripe or vstripe")
	f.StringVar(&opts.logo, "logo", "", "Logo image file or data URI")
	f.Float64Var(&req.LogoScale, "scale", 1.0, "Logo scale between 0.5 and 1.5")
	f.StringVarP(&opts.out, "out", "o", "", "Output file (default qr-code-<millis>.<format>)")
	f.IntVar(&opts.maxSize, "max-size", 4096, "Largest accepted size")
	_ = genCmd.MarkFlagRequired("data")
	root.AddCommand(genCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrlogo %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runServe wires config, logging and the generator into the gin server.
func runServe(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	loaderOpts := []compositor.LoaderOption{compositor.WithMaxSourceBytes(cfg.MaxLogoBytes)}
	if cfg.AllowRemoteSources {
		loaderOpts = append(loaderOpts, compositor.WithRemoteSources(&http.Client{Timeout: cfg.FetchTimeout}))
	}
	rasterOpts := []compositor.RasterOption{
		compositor.WithLoader(compositor.NewLoader(loaderOpts...)),
		compositor.WithLogger(log),
	}
	if !cfg.ParallelDecode {
		rasterOpts = append(rasterOpts, compositor.WithSequentialDecode())
	}

	gen := generator.New(
		generator.WithMaxSize(cfg.MaxSize),
		generator.WithLogger(log),
		generator.WithRaster(compositor.NewRaster(rasterOpts...)),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.NewRouter(handlers.New(gen,
			handlers.WithDefaultSize(cfg.DefaultSize),
			handlers.WithMaxLogoBytes(cfg.MaxLogoBytes),
			handlers.WithLogger(log),
		)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("qrlogo listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}
	return nil
}

type generateOptions struct {
	inputType string
	format    string
	shape     string
	logo      string
	out       string
	maxSize   int
}

// runGenerate renders one code locally. Logo files are inlined as data URIs
// so SVG output stays self-contained.
func runGenerate(ctx context.Context, req generator.Request, opts generateOptions) error {
	if opts.logo != "" {
		if strings.HasPrefix(opts.logo, "data:") {
			req.Logo = opts.logo
		} else {
			data, err := os.ReadFile(strings.TrimPrefix(opts.logo, "file://"))
			if err != nil {
				return fmt.Errorf("read logo: %w", err)
			}
			req.Logo = compositor.EncodeDataURI(data, "")
		}
	}

	log := logger.NewWithWriter(os.Stderr, "warn")
	gen := generator.New(generator.WithMaxSize(opts.maxSize), generator.WithLogger(log))
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	body, err := res.Bytes()
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = res.Filename(time.Now())
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Println(out)
	return nil
}
