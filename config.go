// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/database"
	_ "github.com/ledgerd/ledgerd/database/bdb"
	_ "github.com/ledgerd/ledgerd/database/ldb"
	"github.com/ledgerd/ledgerd/internal/version"
	"github.com/ledgerd/ledgerd/ledgerutil"
	"github.com/ledgerd/ledgerd/sampleconfig"
)

const (
	defaultConfigFilename  = "ledgerd.conf"
	defaultDataDirname     = "data"
	defaultLogLevel        = "info"
	defaultLogDirname      = "logs"
	defaultLogFilename     = "ledgerd.log"
	defaultLogSize         = "10M"
	defaultDbType          = "leveldb"
	defaultSigCacheMaxSize = 100000
	defaultBlockCacheSize  = 64
	minBlockMaxSize        = 2000
)

var (
	defaultHomeDir    = ledgerutil.AppDataDir("ledgerd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// config defines the configuration options for ledgerd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir       string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	LogSize       string `long:"logsize" description:"Maximum size of log file before it is rotated"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DbType        string `long:"dbtype" description:"Database backend to use for the block chain"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given [addr:]port -- NOTE: port must be between 1024 and 65535"`
	CPUProfile    string `long:"cpuprofile" description:"Write CPU profile to the specified file"`
	MemProfile    string `long:"memprofile" description:"Write mem profile to the specified file"`

	// Network settings.
	SimNet bool `long:"simnet" description:"Use the simulation test network"`
	RegNet bool `long:"regnet" description:"Use the regression test network"`

	// Debugging options.
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// Chain settings.
	SigCacheMaxSize uint32 `long:"sigcachemaxsize" description:"The maximum number of entries in the signature verification cache"`
	BlockCacheSize  uint32 `long:"blockcachesize" description:"The number of recently accessed blocks kept in memory"`

	// Mining options.
	Generate     bool     `long:"generate" description:"Generate (mine) coins using the CPU"`
	MiningAddrs  []string `long:"miningaddr" description:"Add the specified payment address to the list of addresses to use for generated blocks -- At least one address is required if the generate option is set"`
	NumBlocks    uint32   `long:"numblocks" description:"Number of blocks to generate before shutting down -- Zero generates blocks until shutdown"`
	BlockMaxSize uint32   `long:"blockmaxsize" description:"Maximum block size in bytes to be used when creating a block"`

	// The following fields are derived from the above fields and are not
	// directly configurable.
	params      *chaincfg.Params
	miningAddrs []*ledgerutil.AddressPubKeyHash
	logSize     int64
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser to
	// otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// parseLogSize parses a log file size with an optional K, M or G suffix into
// a number of bytes.  A size without a suffix is in bytes.
func parseLogSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	multiplier := int64(1)
	if s != "" {
		switch strings.ToUpper(s[len(s)-1:]) {
		case "K":
			multiplier = 1 << 10
		case "M":
			multiplier = 1 << 20
		case "G":
			multiplier = 1 << 30
		}
		if multiplier != 1 {
			s = s[:len(s)-1]
		}
	}
	size, err := strconv.ParseInt(s, 10, 64)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("invalid log size %q", s)
	}
	return size * multiplier, nil
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// createDefaultConfigFile creates a config file at the provided path from the
// commented example config.
func createDefaultConfigFile(destPath string) error {
	// Create the destination directory if it does not exist.
	err := os.MkdirAll(filepath.Dir(destPath), 0700)
	if err != nil {
		return err
	}

	dest, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer dest.Close()

	_, err = io.WriteString(dest, sampleconfig.Ledgerd())
	return err
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in ledgerd functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(appName string, args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:         defaultHomeDir,
		ConfigFile:      defaultConfigFile,
		DataDir:         defaultDataDir,
		LogDir:          defaultLogDir,
		LogSize:         defaultLogSize,
		DbType:          defaultDbType,
		DebugLevel:      defaultLogLevel,
		SigCacheMaxSize: defaultSigCacheMaxSize,
		BlockCacheSize:  defaultBlockCacheSize,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	// Update the home directory for ledgerd if specified.  Since the home
	// directory is updated, other variables need to be updated to reflect
	// the new changes.
	if preCfg.HomeDir != "" {
		cfg.HomeDir = cleanAndExpandPath(preCfg.HomeDir)
		if preCfg.ConfigFile == defaultConfigFile {
			cfg.ConfigFile = filepath.Join(cfg.HomeDir,
				defaultConfigFilename)
		} else {
			cfg.ConfigFile = cleanAndExpandPath(preCfg.ConfigFile)
		}
		if preCfg.DataDir == defaultDataDir {
			cfg.DataDir = filepath.Join(cfg.HomeDir, defaultDataDirname)
		} else {
			cfg.DataDir = cleanAndExpandPath(preCfg.DataDir)
		}
		if preCfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
		} else {
			cfg.LogDir = cleanAndExpandPath(preCfg.LogDir)
		}
	}

	// Create a default config file when one does not exist and the user did
	// not specify an override.
	if preCfg.ConfigFile == defaultConfigFile && !fileExists(cfg.ConfigFile) {
		if err := createDefaultConfigFile(cfg.ConfigFile); err != nil {
			str := fmt.Sprintf("failed to create a default config file: %v",
				err)
			return nil, nil, errSuppressUsage(str)
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			str := fmt.Sprintf("error parsing config file: %v", err)
			return nil, nil, errSuppressUsage(str)
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	// Multiple networks can't be selected simultaneously.  Count number of
	// network flags passed and assign active network params.
	numNets := 0
	cfg.params = chaincfg.MainNetParams()
	if cfg.SimNet {
		numNets++
		cfg.params = chaincfg.SimNetParams()
	}
	if cfg.RegNet {
		numNets++
		cfg.params = chaincfg.RegNetParams()
	}
	if numNets > 1 {
		return nil, nil, errors.New("the simnet and regnet params can't " +
			"be used together -- choose one of the two")
	}

	// Append the network type to the data and log directories so they are
	// "namespaced" per network.  In addition to the block database, there
	// are other pieces of data that are saved to disk such as the log file,
	// so it's nice to separate them per network.
	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir),
		cfg.params.Name)
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir),
		cfg.params.Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", appName, err)
	}

	// Validate the log file size and initialize log rotation.  After the log
	// rotation has been initialized, the logger variables may be used.
	cfg.logSize, err = parseLogSize(cfg.LogSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", appName, err)
	}
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile, cfg.logSize); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Validate database type.
	supportedDbTypes := database.SupportedDrivers()
	if !slices.Contains(supportedDbTypes, cfg.DbType) {
		str := "%s: the specified database type [%v] is invalid -- " +
			"supported types %v"
		return nil, nil, fmt.Errorf(str, appName, cfg.DbType,
			supportedDbTypes)
	}

	// Validate the profile address.
	if cfg.Profile != "" {
		cfg.Profile = portToLocalHostAddr(cfg.Profile)
		if err := validateProfileAddr(cfg.Profile); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", appName, err)
		}
	}

	// Limit the max block size to a sane value.
	maxBlockSize := uint32(cfg.params.MaxBlockSize)
	if cfg.BlockMaxSize != 0 && (cfg.BlockMaxSize < minBlockMaxSize ||
		cfg.BlockMaxSize > maxBlockSize) {

		str := "%s: the blockmaxsize option must be in between %d and %d " +
			"-- parsed [%d]"
		return nil, nil, fmt.Errorf(str, appName, minBlockMaxSize,
			maxBlockSize, cfg.BlockMaxSize)
	}

	// Check mining addresses are valid and saved parsed versions.
	cfg.miningAddrs = make([]*ledgerutil.AddressPubKeyHash, 0,
		len(cfg.MiningAddrs))
	for _, strAddr := range cfg.MiningAddrs {
		addr, err := ledgerutil.DecodeAddress(strAddr, cfg.params)
		if err != nil {
			str := "%s: mining address '%s' failed to decode: %w"
			return nil, nil, fmt.Errorf(str, appName, strAddr, err)
		}
		cfg.miningAddrs = append(cfg.miningAddrs, addr)
	}

	// Ensure there is at least one mining address when the generate flag is
	// set and the network supports generation.
	if cfg.Generate {
		if !cfg.params.GenerateSupported {
			str := "%s: the generate option is not supported on %s"
			return nil, nil, fmt.Errorf(str, appName, cfg.params.Name)
		}
		if len(cfg.miningAddrs) == 0 {
			str := "%s: the generate flag is set, but there are no " +
				"mining addresses specified"
			return nil, nil, fmt.Errorf(str, appName)
		}
	} else if cfg.NumBlocks != 0 {
		str := "%s: the numblocks option requires the generate option"
		return nil, nil, fmt.Errorf(str, appName)
	}

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid options.
	// Note this should go directly before the return.
	if configFileError != nil {
		ledgerdLog.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
