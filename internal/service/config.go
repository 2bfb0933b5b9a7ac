package service

import (
	"github.com/JonMunkholm/bankrecon/internal/config"
	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/ingest"
)

// OptionsFromConfig maps loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
		Ingest: ingest.Options{
			Encoding: cfg.Upload.Encoding,
			MaxBytes: cfg.Upload.MaxFileSize,
			MaxRows:  cfg.Upload.MaxRows,
		},
		Reconcile: core.ReconcileOptions{
			Tolerance: cfg.Pipeline.ReconcileTolerance,
			Workers:   cfg.Pipeline.ReconcileWorkers,
		},
		AnomalyThreshold: cfg.Pipeline.AnomalyThreshold,
		TopCities:        cfg.Pipeline.TopCities,
		MaxRetained:      cfg.Runs.MaxRetained,
	}
}
