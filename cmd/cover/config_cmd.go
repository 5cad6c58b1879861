package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-cover/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML, after the
// config file and environment overrides are applied.
func runConfigCmd(args []string, env *Environment) error {
	f, err := parseConfigFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	setupLogger(env, f)

	cfg, err := loadConfig(f, loadEnvConfig(env.Getenv, env.Logger))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
