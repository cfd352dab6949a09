package emby

// Config holds client settings shared by every remote server.
// The URL and API key come from the stored server record.
type Config struct {
	// TimeoutSeconds bounds each HTTP attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// RetryMax is the number of retries after the first attempt.
	RetryMax int `mapstructure:"retry_max" default:"2"`
}

const (
	defaultTimeoutSeconds = 10
	defaultRetryMax       = 2
)
