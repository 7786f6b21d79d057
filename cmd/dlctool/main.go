// Copyright (c) 2015-2016, 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// dlctool decodes, validates, funds and stores DLC negotiation messages.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultConfig()
	parser, err := newParser(cfg)
	if err != nil {
		return err
	}

	_, err = parser.ParseArgs(args)
	if logRotator != nil {
		defer func() {
			logRotator.Close()
			logRotator = nil
		}()
	}
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil
		}
		log.Errorf("%v", err)
		return err
	}
	return nil
}
