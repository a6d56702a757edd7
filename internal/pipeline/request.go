package pipeline

import (
	"fmt"
	"strings"

	"github.com/flemzord/abridge/internal/band"
)

// Level selects the summarization strategy for documents below the long
// document threshold.
type Level string

// Supported levels.
const (
	LevelRatio   Level = "ratio"
	LevelConcise Level = "concise"
)

// ParseLevel normalizes s. The empty string means LevelRatio; anything
// else unknown is a validation error.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LevelRatio, nil
	case LevelRatio, LevelConcise:
		return l, nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("Unknown level %q; expected \"ratio\" or \"concise\".", s)}
	}
}

// Request is one summarization job.
type Request struct {
	Text     string  `json:"text"`
	Ratio    float64 `json:"ratio"`
	Level    Level   `json:"level"`
	DoSample bool    `json:"do_sample"`
}

// Path names the execution path a request took.
type Path string

// Execution paths.
const (
	PathSingle  Path = "single"
	PathLong    Path = "long"
	PathConcise Path = "concise"
)

// Result is the outcome of a successful request.
type Result struct {
	Summary string    `json:"summary"`
	Path    Path      `json:"path"`
	Chunks  int       `json:"chunks"`
	Band    band.Band `json:"band"`
	Words   int       `json:"words"`
}

// Stage names a progress event.
type Stage string

// Progress stages, in emission order.
const (
	StageSanitized Stage = "sanitized"
	StageChunked   Stage = "chunked"
	StageChunkDone Stage = "chunk_done"
	StageFinal     Stage = "final"
)

// Event reports pipeline progress. Fields not relevant to the stage are zero.
type Event struct {
	Stage Stage `json:"stage"`
	Path  Path  `json:"path,omitempty"`
	Words int   `json:"words,omitempty"`
	Chunk int   `json:"chunk,omitempty"`
	Done  int   `json:"done,omitempty"`
	Total int   `json:"total,omitempty"`
}

// EventFunc receives progress events. It may be called from several
// goroutines at once during the chunk stage.
type EventFunc func(Event)
