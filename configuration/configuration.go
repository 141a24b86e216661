// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/chain"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/peer"
)

// basic defaults (directories and files are relative to the
// "DataDirectory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file
	defaultPidFile       = "dsnoded.pid"

	defaultPublicKeyFile  = "dsnoded.public"
	defaultPrivateKeyFile = "dsnoded.private"

	defaultDirectoryFile = "dsnoded.directory"

	defaultLevelDBDirectory = "data"

	defaultLogDirectory = "log"
	defaultLogFile      = "dsnoded.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// path expanded or calculated defaults
var (
	defaultLogLevels = map[string]string{
		"main":            "info",
		"config":          "info",
		logger.DefaultTag: "error",
	}
)

// DatabaseType - the storage database directory and file prefix
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// NodeType - the committee position of this node
//
// a DS committee member collects the shard microblocks; a lookup node
// only observes and never verifies or stores deltas
type NodeType struct {
	DSCommittee bool  `gluamapper:"ds_committee" json:"ds_committee"`
	Shard       int64 `gluamapper:"shard" json:"shard"`
	Lookup      bool  `gluamapper:"lookup" json:"lookup"`
}

// Ref - the committee reference this node is configured for
func (node *NodeType) Ref() committee.ShardRef {
	if node.DSCommittee {
		return committee.DSRef()
	}
	return committee.ShardId(uint32(node.Shard))
}

// Configuration - the full configuration file data
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Chain         string               `gluamapper:"chain" json:"chain"`
	DirectoryFile string               `gluamapper:"directory_file" json:"directory_file"`
	Node          NodeType             `gluamapper:"node" json:"node"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Peering       peer.Configuration   `gluamapper:"peering" json:"peering"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       defaultPidFile,
		Chain:         chain.Mainnet,
		DirectoryFile: defaultDirectoryFile,

		Node: NodeType{
			DSCommittee: false,
			Shard:       -1,
			Lookup:      false,
		},

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      chain.Mainnet,
		},

		Peering: peer.Configuration{
			PublicKey:  defaultPublicKeyFile,
			PrivateKey: defaultPrivateKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// abort if the chain name is not recognised
	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, fmt.Errorf("chain: %q is not supported", options.Chain)
	}

	// if database was not changed from default, name it after the chain
	if chain.Mainnet == options.Database.Name {
		options.Database.Name = options.Chain
	}

	// a non-lookup node must sit somewhere: the DS committee or a shard
	if !options.Node.Lookup && !options.Node.DSCommittee && options.Node.Shard < 0 {
		return nil, fmt.Errorf("node: neither ds_committee nor a shard is configured")
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.PidFile,
		&options.DirectoryFile,
		&options.Database.Directory,
		&options.Peering.PublicKey,
		&options.Peering.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// fail if the database prefix or log file is not a simple name
	// i.e. must not contain a path separator
	// the log file stays relative: the logger joins it with its directory
	switch filepath.Dir(options.Database.Name) {
	case "", ".":
		options.Database.Name = ensureAbsolute(options.Database.Directory, options.Database.Name)
	default:
		return nil, fmt.Errorf("files: %q is not a plain name", options.Database.Name)
	}
	if dir := filepath.Dir(options.Logging.File); "" != dir && "." != dir {
		return nil, fmt.Errorf("files: %q is not a plain name", options.Logging.File)
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{&options.Database.Directory, &options.Logging.Directory} {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
