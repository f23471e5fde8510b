package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sws-server/sws/app/lib/accesslog"
	"github.com/sws-server/sws/app/lib/cgi"
	"github.com/sws-server/sws/app/lib/config"
	"github.com/sws-server/sws/app/lib/http"
	"github.com/sws-server/sws/app/lib/server"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	conf, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if conf.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(consoleWriter())
	}
	logger := log.With().Str("component", "main").Logger()

	if err := conf.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Debug().Interface("config", conf).Msg("Parsed config")

	access, err := openAccessLog(conf)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open access log")
	}
	defer access.Close()

	var executor *cgi.Executor
	if conf.CgiDir != "" {
		executor = cgi.NewExecutor(conf.CgiDir,
			log.With().Str("component", "cgi").Logger(),
			cgi.WithMaxOutput(conf.CgiMaxOutput),
			cgi.WithTimeout(conf.CgiTimeout))
	}

	pipeline, err := http.NewServerPipeline(
		http.NewStaticResolver(conf.DocRoot),
		executor,
		log.With().Str("component", "pipeline").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build request pipeline")
	}

	srv := server.New(conf, pipeline, access, log.With().Str("component", "listener").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to bind to port")
	}

	logger.Info().Msg("shut down")
}

// consoleWriter renders human-readable, colored logs when stdout is a
// terminal.
func consoleWriter() io.Writer {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return os.Stdout
	}
	return zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}
}

func openAccessLog(conf config.Config) (*accesslog.Logger, error) {
	switch {
	case conf.Debug:
		return accesslog.New(os.Stdout), nil
	case conf.LogFile != "":
		return accesslog.Open(conf.LogFile)
	}
	return accesslog.Discard(), nil
}
