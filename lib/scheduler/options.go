package scheduler

import (
	"fmt"
	"strings"
)

// CommitPolicy decides what a commit operation does to the data items.
type CommitPolicy uint8

const (
	// CommitNoop treats a commit as a pure marker.
	CommitNoop CommitPolicy = iota
	// CommitResetsTimestamps resets the timestamps of every data item on commit.
	CommitResetsTimestamps
)

func (p CommitPolicy) String() string {
	switch p {
	case CommitNoop:
		return "noop"
	case CommitResetsTimestamps:
		return "reset"
	default:
		return "unknown"
	}
}

// ParseCommitPolicy parses "noop" or "reset". The empty string maps to CommitNoop.
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "noop":
		return CommitNoop, nil
	case "reset":
		return CommitResetsTimestamps, nil
	default:
		return 0, fmt.Errorf("invalid commit policy %q (expected noop or reset)", s)
	}
}

// Options configures a scheduler.
type Options struct {
	// CommitPolicy is applied to every commit operation.
	CommitPolicy CommitPolicy
	// Audit enables the per-item audit log.
	Audit bool
}

// DefaultOptions returns the options used when nil is passed to NewScheduler.
func DefaultOptions() *Options {
	return &Options{
		CommitPolicy: CommitNoop,
		Audit:        true,
	}
}
