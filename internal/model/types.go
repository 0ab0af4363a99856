// Package model defines shared data structures.
package model

import "time"

// Config defines trainer and shell settings.
type Config struct {
	Backend      string
	TickRate     int
	TimeoutTicks int
	LatchDevice  bool
	TextPath     string
	ConfirmKey   int
	ResetKey     int
	MIDI         bool
	LogLevel     string
	LogFormat    string
	LogFile      string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Sequence    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// AttemptStats captures one finished practice attempt.
type AttemptStats struct {
	StartedAt      time.Time
	EndedAt        time.Time
	Sequence       string
	SequenceLength int
	Completed      bool
	Hits           int
	Misses         int
	GapTicks       int
}

// StepStats stores one scored input of an attempt.
type StepStats struct {
	Position     int
	Expected     string
	Label        string
	GapTicks     int
	Hit          bool
	Simultaneous bool
}

// StepAggregate aggregates steps across attempts by expected label.
type StepAggregate struct {
	Expected    string
	Hits        int
	Misses      int
	GapSumTicks int64
	GapCount    int64
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID      int64
	EndedAt        time.Time
	SequenceLength int
	Completed      bool
	Hits           int
	Misses         int
	GapTicks       int
	Steps          int
}
