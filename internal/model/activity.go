// Package model holds the data types shared across the analytics kernel:
// activities, streams, split results, and the longitudinal state derived
// from them.
package model

import "time"

// ActivityType enumerates the supported activity types. Only Ride,
// VirtualRide and Run are analysed; Walk is tracked but skipped by the
// Analyzer.
type ActivityType string

const (
	Ride        ActivityType = "Ride"
	VirtualRide ActivityType = "VirtualRide"
	Run         ActivityType = "Run"
	Walk        ActivityType = "Walk"
)

// SupportedTypes lists the activity types the Analyzer will process.
var SupportedTypes = map[ActivityType]bool{
	Ride:        true,
	VirtualRide: true,
	Run:         true,
}

// Activity is an immutable metadata record for one recorded session.
type Activity struct {
	ID                 int64
	StartDate          time.Time
	StartDateLocal     time.Time
	Type               ActivityType
	Name               string
	Distance           float64 // meters
	MovingTime         int     // seconds
	ElapsedTime        int     // seconds
	ElevationGain      float64 // meters
	AverageSpeed       float64 // m/s
	MaxSpeed           float64 // m/s
}

// IsSupported reports whether the Analyzer should process this activity.
func (a Activity) IsSupported() bool {
	return SupportedTypes[a.Type]
}
