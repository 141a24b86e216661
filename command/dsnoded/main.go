// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/accountstate"
	"github.com/openshard/dsnoded/coinbase"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/configuration"
	"github.com/openshard/dsnoded/dirservice"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/mode"
	"github.com/openshard/dsnoded/peer"
	"github.com/openshard/dsnoded/storage"
	"github.com/openshard/dsnoded/version"
)

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version.Version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--quiet] [--verbose] --config-file=FILE", program)
	}

	if 0 != len(arguments) {
		exitwithstatus.Message("%s: extraneous arguments: %v", program, arguments)
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: exactly one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version.Version)

	if len(options["verbose"]) > 0 {
		log.Debugf("theConfiguration: %v", theConfiguration)
	}

	// set up the fault panic log
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault initialise error: %s", program, err)
	}
	defer fault.Finalise()

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise(theConfiguration.Chain)
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	// general info
	log.Infof("test mode: %v", mode.IsTesting())
	log.Infof("database: %q", theConfiguration.Database)
	log.Debugf("%s = %#v", "Peering", theConfiguration.Peering)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// account state overlay
	err = accountstate.Initialise()
	if nil != err {
		log.Criticalf("accountstate initialise error: %s", err)
		exitwithstatus.Message("accountstate initialise error: %s", err)
	}
	defer accountstate.Finalise()

	// coinbase reward ledger
	err = coinbase.Initialise()
	if nil != err {
		log.Criticalf("coinbase initialise error: %s", err)
		exitwithstatus.Message("coinbase initialise error: %s", err)
	}
	defer coinbase.Finalise()

	// committee membership for the current DS block
	log.Infof("read committee directory: %q", theConfiguration.DirectoryFile)
	source, err := committee.LoadDirectoryFile(theConfiguration.DirectoryFile)
	if nil != err {
		log.Criticalf("committee directory error: %s", err)
		exitwithstatus.Message("committee directory error: %s", err)
	}
	log.Infof("shards: %d", source.NumShards())

	// start the directory service core
	log.Info("initialise dirservice")
	err = dirservice.Initialise(source, dirservice.Handles{}, theConfiguration.Node.Ref(), theConfiguration.Node.Lookup)
	if nil != err {
		log.Criticalf("dirservice initialise error: %s", err)
		exitwithstatus.Message("dirservice initialise error: %s", err)
	}
	defer dirservice.Finalise()

	// start up the peering background processes
	err = peer.Initialise(&theConfiguration.Peering)
	if nil != err {
		log.Criticalf("peer initialise error: %s", err)
		exitwithstatus.Message("peer initialise error: %s", err)
	}
	defer peer.Finalise()

	// ready to take shard submissions
	mode.Set(mode.AcceptSubmissions)

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}
