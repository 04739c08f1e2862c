// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-formula/pkg/formula"
	"github.com/consensys/go-formula/pkg/scenario"
)

// Config holds the tool-level settings, read from an optional TOML file and
// overridable by flags.
type Config struct {
	// Capacity of the formula parse cache.
	CacheCapacity uint `toml:"cache_capacity"`
	// Number of rows evaluated concurrently.
	Workers uint `toml:"workers"`
	// Enable debug logging.
	Verbose bool `toml:"verbose"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{CacheCapacity: formula.DefaultCacheCapacity}
}

// ParseConfig reads settings from a given TOML file, starting from defaults.
func ParseConfig(filename string) (Config, error) {
	config := DefaultConfig()
	//
	if _, err := toml.DecodeFile(filename, &config); err != nil {
		return config, err
	}
	//
	return config, nil
}

// Resolve the effective configuration for a given command invocation: file
// settings first (if a file is named), then flag overrides.
func resolveConfig(cmd *cobra.Command) Config {
	config := DefaultConfig()
	//
	if filename := getString(cmd, "config"); filename != "" {
		var err error
		//
		if config, err = ParseConfig(filename); err != nil {
			log.Fatalf("reading config file: %v", err)
		}
	}
	//
	if n := getUint(cmd, "cache"); n != 0 {
		config.CacheCapacity = n
	}
	//
	if n := getUint(cmd, "workers"); n != 0 {
		config.Workers = n
	}
	//
	if getFlag(cmd, "verbose") || config.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	//
	return config
}

// Construct a compiler from this configuration.
func (p Config) compiler() *formula.Compiler {
	return formula.NewCompiler(p.CacheCapacity)
}

// Construct an executor from this configuration.
func (p Config) executor(compiler *formula.Compiler, failFast bool) *scenario.Executor {
	var options []scenario.Option
	//
	if p.Workers != 0 {
		options = append(options, scenario.WithWorkers(int(p.Workers)))
	}
	//
	if failFast {
		options = append(options, scenario.WithFailFast())
	}
	//
	return scenario.NewExecutor(compiler, options...)
}
