package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLength = 9

// NewID returns "<prefix>-<unix millis>-<random>" for the given instant.
func NewID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLength]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
