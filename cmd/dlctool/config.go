// Copyright (c) 2013-2016, 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcdlc/internal/cfgutil"
	"github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel    = "warn"
	defaultLogFilename = "dlctool.log"
	defaultDBFilename  = "dlc.db"
	defaultNetwork     = "mainnet"
)

var (
	defaultAppDataDir = btcutil.AppDataDir("dlctool", false)
	defaultLogDir     = filepath.Join(defaultAppDataDir, "logs")

	// defaultMaxFee bounds the funding fee a single fund invocation will
	// accept.
	defaultMaxFee = btcutil.Amount(100000)
)

// config holds the options shared by every command.
type config struct {
	AppDataDir *cfgutil.ExplicitString `short:"A" long:"appdata" description:"Application data directory"`
	LogDir     *cfgutil.ExplicitString `long:"logdir" description:"Directory to log output"`
	DebugLevel string                  `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	DBPath     *cfgutil.ExplicitString `long:"db" description:"Path to the contract database (default: <appdata>/<network>/dlc.db)"`
	Network    string                  `short:"n" long:"network" description:"Network the messages must belong to {mainnet, testnet, regtest, simnet, signet}"`
	MaxFee     *cfgutil.AmountFlag     `long:"maxfee" description:"Largest total funding fee to accept, in BTC or with a sat suffix"`

	params *chaincfg.Params
}

func defaultConfig() *config {
	return &config{
		AppDataDir: cfgutil.NewExplicitString(defaultAppDataDir),
		LogDir:     cfgutil.NewExplicitString(defaultLogDir),
		DebugLevel: defaultLogLevel,
		DBPath:     cfgutil.NewExplicitString(""),
		Network:    defaultNetwork,
		MaxFee:     cfgutil.NewAmountFlag(defaultMaxFee),
	}
}

// normalize validates the options and fills in the defaults that depend on
// other options.  It runs once, before the chosen command executes.
func (c *config) normalize() error {
	if !validLogLevel(c.DebugLevel) {
		return fmt.Errorf("invalid debug level %q", c.DebugLevel)
	}

	params, err := cfgutil.NetParams(c.Network)
	if err != nil {
		return err
	}
	c.params = params

	c.AppDataDir.Value = cfgutil.CleanAndExpandPath(c.AppDataDir.Value)

	// Data that is kept per network lives under the network name.
	c.LogDir.SetDefault(filepath.Join(c.AppDataDir.Value, "logs"))
	c.LogDir.Value = cfgutil.CleanAndExpandPath(c.LogDir.Value)
	c.DBPath.SetDefault(filepath.Join(c.AppDataDir.Value, params.Name,
		defaultDBFilename))
	c.DBPath.Value = cfgutil.CleanAndExpandPath(c.DBPath.Value)

	if c.MaxFee.Amount < 0 {
		return fmt.Errorf("negative max fee %v", c.MaxFee.Amount)
	}
	return nil
}

// initLogging starts the log rotator and applies the debug level.
func (c *config) initLogging() error {
	err := initLogRotator(filepath.Join(c.LogDir.Value, c.params.Name,
		defaultLogFilename))
	if err != nil {
		return err
	}
	setLogLevels(c.DebugLevel)
	return nil
}

// newParser returns a parser over cfg with every command registered.
func newParser(cfg *config) (*flags.Parser, error) {
	parser := flags.NewParser(cfg, flags.Default)
	parser.SubcommandsOptional = false

	if err := addCommands(parser.Command, commands(cfg)); err != nil {
		return nil, err
	}

	parser.CommandHandler = func(command flags.Commander,
		args []string) error {

		if command == nil {
			return nil
		}
		if err := cfg.normalize(); err != nil {
			return err
		}
		if err := cfg.initLogging(); err != nil {
			return err
		}
		return command.Execute(args)
	}
	return parser, nil
}

// addCommands registers cmds and their subcommands under parent.
func addCommands(parent *flags.Command, cmds []command) error {
	for _, cmd := range cmds {
		c, err := parent.AddCommand(cmd.name, cmd.short, cmd.long,
			cmd.data)
		if err != nil {
			return err
		}
		if err := addCommands(c, cmd.sub); err != nil {
			return err
		}
	}
	return nil
}
