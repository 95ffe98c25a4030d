// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
ledgerd is a standalone ledger node that maintains a proof of work block chain
and its unspent transaction output set in a local database.

The default options are sane for most users.  However, there are also a
variety of flags that can be used to control it.

The following section provides a usage overview which enumerates the flags.  An
interesting point to note is that the long form of all of these options
(except -C) can be specified in a configuration file that is automatically
parsed when ledgerd starts up.  By default, the configuration file is located
at ~/.ledgerd/ledgerd.conf on POSIX-style operating systems and
%LOCALAPPDATA%\ledgerd\ledgerd.conf on Windows.  The -C (--configfile) flag, as
shown below, can be used to override this location.

Usage:

	ledgerd [OPTIONS]

Application Options:

	-V, --version            Display version information and exit
	-A, --appdata=           Path to application home directory
	-C, --configfile=        Path to configuration file
	-b, --datadir=           Directory to store data
	    --logdir=            Directory to log output
	    --logsize=           Maximum size of log file before it is rotated
	                         (default: 10M)
	    --nofilelogging      Disable file logging
	    --dbtype=            Database backend to use for the block chain
	                         (default: leveldb)
	    --profile=           Enable HTTP profiling on given [addr:]port --
	                         NOTE: port must be between 1024 and 65535
	    --cpuprofile=        Write CPU profile to the specified file
	    --memprofile=        Write mem profile to the specified file
	    --simnet             Use the simulation test network
	    --regnet             Use the regression test network
	-d, --debuglevel=        Logging level for all subsystems {trace, debug,
	                         info, warn, error, critical} -- You may also
	                         specify
	                         <subsystem>=<level>,<subsystem2>=<level>,... to
	                         set the log level for individual subsystems --
	                         Use show to list available subsystems (info)
	    --sigcachemaxsize=   The maximum number of entries in the signature
	                         verification cache (default: 100000)
	    --blockcachesize=    The number of recently accessed blocks kept in
	                         memory (default: 64)
	    --generate           Generate (mine) coins using the CPU
	    --miningaddr=        Add the specified payment address to the list of
	                         addresses to use for generated blocks -- At least
	                         one address is required if the generate option is
	                         set
	    --numblocks=         Number of blocks to generate before shutting
	                         down -- Zero generates blocks until shutdown
	    --blockmaxsize=      Maximum block size in bytes to be used when
	                         creating a block

Help Options:

	-h, --help           Show this help message
*/
package main
