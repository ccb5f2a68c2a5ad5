package usi

import "strconv"

// Options is the option map replayed as "setoption name K value V" lines
// immediately after the engine process spawns. It must be set before
// Connect.
type Options map[string]string

// EngineConfig is a convenience source for the common option set self-play
// tooling cares about, rather than callers hand-building an Options map
// for every run. HashOptionName lets an engine that names its hash option
// "USI_Hash" instead of "Hash" be accommodated without the caller
// reshaping the map itself.
type EngineConfig struct {
	Hash                int
	HashOptionName      string
	Threads             int
	NetworkDelay        int
	NetworkDelay2       int
	MaxMovesToDraw      int
	MinimumThinkingTime int
}

// ToOptions renders the config as an Options map, using HashOptionName
// (default "Hash") for the hash-size entry and omitting zero-valued
// fields the engine would otherwise default sensibly.
func (c EngineConfig) ToOptions() Options {
	opts := Options{}
	hashName := c.HashOptionName
	if hashName == "" {
		hashName = "Hash"
	}
	if c.Hash != 0 {
		opts[hashName] = strconv.Itoa(c.Hash)
	}
	if c.Threads != 0 {
		opts["Threads"] = strconv.Itoa(c.Threads)
	}
	if c.NetworkDelay != 0 {
		opts["NetworkDelay"] = strconv.Itoa(c.NetworkDelay)
	}
	if c.NetworkDelay2 != 0 {
		opts["NetworkDelay2"] = strconv.Itoa(c.NetworkDelay2)
	}
	if c.MaxMovesToDraw != 0 {
		opts["MaxMovesToDraw"] = strconv.Itoa(c.MaxMovesToDraw)
	}
	if c.MinimumThinkingTime != 0 {
		opts["MinimumThinkingTime"] = strconv.Itoa(c.MinimumThinkingTime)
	}
	return opts
}
