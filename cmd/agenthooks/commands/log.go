package commands

import "github.com/btcsuite/btclog/v2"

// log is the command layer's logger. It stays disabled unless logging is
// configured.
var log = btclog.Disabled
