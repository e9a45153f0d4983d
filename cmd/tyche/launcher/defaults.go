package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before config files and flags override them.
type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Logging LoggingDefaults
}

// NodeDefaults captures where the node keeps its files.
type NodeDefaults struct {
	DataDir string // Root the storage file names are resolved against.
}

// NetworkDefaults selects the rule set.
type NetworkDefaults struct {
	Name string // Rule table name accepted by tyche.RulesByName.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    // Log level numeric (0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string // Log output format (text vs json).
	Color     bool   // Whether to use ANSI color codes in logs.
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.tyche",
		},
		Network: NetworkDefaults{
			Name: "main",
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
	}
}
