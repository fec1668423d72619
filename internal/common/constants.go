package common

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvModelPath         = "MODEL_PATH"
	EnvFallbackThreshold = "FALLBACK_THRESHOLD"
	EnvDriftThreshold    = "DRIFT_THRESHOLD"
	EnvWindowSize        = "WINDOW_SIZE"
	EnvListenPort        = "LISTEN_PORT"
	EnvDataPath          = "DATA_PATH"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvShutdownTimeout   = "SHUTDOWN_TIMEOUT"
	EnvSnapshotInterval  = "SNAPSHOT_INTERVAL"
)

// Configuration defaults
const (
	DefaultModelPath         = "models/role_model.json"
	DefaultFallbackThreshold = 0.6
	DefaultDriftThreshold    = 0.5
	DefaultWindowSize        = 50
	DefaultListenPort        = 8000
)

// FallbackLabel is returned instead of a model prediction whenever the
// service degrades to the safe default.
const FallbackLabel = "Generalist_Candidate_Review_Required"

// MinSkillsLength is the soft lower bound on the skills text. Shorter
// values are logged as suspicious, never rejected.
const MinSkillsLength = 2

// KnownExperienceLevels is the enumerated set the model was trained on.
// Values outside the set are logged, not rejected.
var KnownExperienceLevels = map[string]struct{}{
	"Intern":    {},
	"Junior":    {},
	"Mid":       {},
	"Senior":    {},
	"Executive": {},
}

// Validation constants
const (
	MinListenPort = 1024
	MaxListenPort = 65535
	MaxWindowSize = 100000
)

// Common error messages
const (
	ErrMsgModelPathRequired = "model path is required"
	ErrMsgWindowSizePos     = "window size must be a positive integer"
)
