package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-cred-stash/internal/config"
	"github.com/MKhiriev/go-cred-stash/internal/keystore"
	"github.com/MKhiriev/go-cred-stash/internal/logger"
	"github.com/MKhiriev/go-cred-stash/models"
)

const appName = "go-cred-stash"

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout))
}

// execute runs the command and returns the process exit code. Deferred
// cleanup always runs before the process exits.
func execute(args []string, stdin io.Reader, stdout io.Writer) int {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	if isVersion(args) {
		_, _ = fmt.Fprint(stdout, buildInfo)
		return 0
	}

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		bootLog := logger.NewLogger(appName, config.DefaultLogLevel)
		bootLog.Error().Err(err).Msg("error getting configs")
		return 1
	}

	log := logger.NewLogger(appName, cfg.Log.Level)
	if cfg.KMS.KeyRingID != "" && cfg.KMS.CryptoKeyID != "" {
		log.Debug().Str("crypto_key", cfg.KMS.CryptoKeyName(cfg.Keystore.ProjectID)).Msg("default KMS key")
	}

	if isVersion(flag.Args()) {
		_, _ = fmt.Fprint(stdout, buildInfo)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ks, err := keystore.New(ctx, cfg.Keystore, log)
	if err != nil {
		log.Error().Err(err).Msg("create keystore")
		return 1
	}
	defer func() {
		if err := ks.Close(); err != nil {
			log.Error().Err(err).Msg("close keystore")
		}
	}()

	if err = run(ctx, ks, flag.Args(), stdin, stdout); err != nil {
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

// isVersion reports whether the first argument asks for build information.
func isVersion(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "version", "-version", "--version":
		return true
	default:
		return false
	}
}
