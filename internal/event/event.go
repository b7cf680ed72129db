package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	RunStarted Type = iota + 1
	EstimateComplete
	FileCopied
	FileSkipped
	FileFailed
	Milestone
	RunComplete
)

var typeNames = [...]string{
	RunStarted:       "RunStarted",
	EstimateComplete: "EstimateComplete",
	FileCopied:       "FileCopied",
	FileSkipped:      "FileSkipped",
	FileFailed:       "FileFailed",
	Milestone:        "Milestone",
	RunComplete:      "RunComplete",
}

func (t Type) String() string {
	if t >= 1 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the sync engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative path
	Size      int64  // file size (FileCopied/FileFailed)
	Copied    int64  // running copied count (Milestone/RunComplete)
	Skipped   int64  // running skipped count (Milestone/RunComplete)
	Total     int64  // planned file count (EstimateComplete)
	TotalSize int64  // planned byte count (EstimateComplete)
	Error     error
}
