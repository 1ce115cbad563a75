package analytics

import (
	"os"

	"github.com/oklog/ulid/v2"
)

// NewConsumerID returns a consumer name for the stream consumer group,
// unique per process start.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return host + "-" + ulid.Make().String()
}
