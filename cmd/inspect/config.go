package main

import (
	"github.com/kelseyhightower/envconfig"
)

type inspectConfig struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	// INSPECT_COLOURS tints the record type column
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func loadConfig() (inspectConfig, error) {
	var cfg inspectConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}
