package config

import (
	"flag"
)

// ParseFlags parses the keystore flags from the process command line.
// Positional arguments remaining after the flags are available via
// flag.Args.
//
// Flags:
//
//	-project          Google Cloud project id
//	-rest-api         use the Datastore REST API instead of the native client
//	-namespace        Datastore namespace
//	-endpoint         Datastore REST endpoint base URL
//	-request-timeout  REST request timeout (e.g. "30s")
//	-kind             default Datastore kind
//	-key-ring         default KMS key ring id
//	-location         default KMS location id
//	-crypto-key       default KMS crypto key id
//	-log-level        log level
//	-c/-config        json file path with configs
func ParseFlags() *StructuredConfig {
	cfg := &StructuredConfig{}

	flag.StringVar(&cfg.Keystore.ProjectID, "project", "", "Google Cloud project id")
	flag.Var(&cfg.Keystore.RESTAPI, "rest-api", "Use the Datastore REST API")
	flag.StringVar(&cfg.Keystore.Namespace, "namespace", "", "Datastore namespace")
	flag.StringVar(&cfg.Keystore.Endpoint, "endpoint", "", "Datastore REST endpoint base URL")
	flag.DurationVar(&cfg.Keystore.RequestTimeout, "request-timeout", 0, "REST request timeout (e.g., 30s, 1m)")
	flag.StringVar(&cfg.Keystore.DefaultKind, "kind", "", "Default Datastore kind")
	flag.StringVar(&cfg.KMS.KeyRingID, "key-ring", "", "Default KMS key ring id")
	flag.StringVar(&cfg.KMS.LocationID, "location", "", "Default KMS location id")
	flag.StringVar(&cfg.KMS.CryptoKeyID, "crypto-key", "", "Default KMS crypto key id")
	flag.StringVar(&cfg.Log.Level, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	flag.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return cfg
}
