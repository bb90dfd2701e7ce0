package posts

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^post-\d+-[a-z0-9]+$`)

// NewID returns an id of the form post-<unix millis>-<9 alphanumerics>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("post-%d-%s", now.UnixMilli(), suffix)
}

// IsGeneratedID reports whether id has the shape produced by NewID.
func IsGeneratedID(id string) bool {
	return idPattern.MatchString(id)
}
