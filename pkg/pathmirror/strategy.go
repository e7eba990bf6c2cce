package pathmirror

import (
	"fmt"
)

// Strategy represents how a run executes its file copies.
type Strategy int

const (
	// StrategySequential consumes the walker's operations one at a time in a
	// single goroutine. It is the only strategy compatible with prompt mode.
	StrategySequential Strategy = iota
	// StrategyWorkerPool fans file copies out to ThrottleLimit concurrent
	// workers fed from the walker's channel.
	StrategyWorkerPool
	// StrategyNativeTool delegates the whole copy to robocopy or rsync.
	StrategyNativeTool
)

var strategyToString = map[Strategy]string{
	StrategySequential: "sequential",
	StrategyWorkerPool: "worker-pool",
	StrategyNativeTool: "native-tool",
}

// String returns the string representation of a Strategy.
func (s Strategy) String() string {
	if str, ok := strategyToString[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown_strategy(%d)", s)
}

// walkerStrategy picks the in-process strategy for the given options.
// A throttle limit of 1 forces sequential execution, and prompt mode cannot
// be parallelized because its confirmation callback is interactive.
func (o Options) walkerStrategy() Strategy {
	if o.ThrottleLimit > 1 && o.UpdateMode != UpdatePrompt {
		return StrategyWorkerPool
	}
	return StrategySequential
}
