package dispatch

// Config names the pieces of the routing procedure. The defaults match the
// OP_NET runtime base contract.
type Config struct {
	RoutingName   string `toml:"routing_name"`
	SelectorParam string `toml:"selector_param"`
	SelectorType  string `toml:"selector_type"`
	CalldataParam string `toml:"calldata_param"`
	CalldataType  string `toml:"calldata_type"`
	ReturnType    string `toml:"return_type"`
	// Fallback is the outer routing procedure called when no selector
	// matches.
	Fallback string `toml:"fallback"`
	// Banner is emitted as a comment above the procedure; empty omits it.
	Banner string `toml:"banner"`
}

// DefaultConfig returns the stock routing shape.
func DefaultConfig() Config {
	return Config{
		RoutingName:   "execute",
		SelectorParam: "selector",
		SelectorType:  "u32",
		CalldataParam: "calldata",
		CalldataType:  "Calldata",
		ReturnType:    "BytesWriter",
		Fallback:      "super.execute",
		Banner:        "auto-injected by abiforge",
	}
}

// withDefaults fills empty fields from DefaultConfig. Banner is left alone.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.RoutingName == "" {
		c.RoutingName = def.RoutingName
	}
	if c.SelectorParam == "" {
		c.SelectorParam = def.SelectorParam
	}
	if c.SelectorType == "" {
		c.SelectorType = def.SelectorType
	}
	if c.CalldataParam == "" {
		c.CalldataParam = def.CalldataParam
	}
	if c.CalldataType == "" {
		c.CalldataType = def.CalldataType
	}
	if c.ReturnType == "" {
		c.ReturnType = def.ReturnType
	}
	if c.Fallback == "" {
		c.Fallback = def.Fallback
	}
	return c
}
