package checkpointer

import (
	"fmt"
	"time"
)

// FileTimer returns a function which appends to a filename the number
// of nanoseconds since January 1, 1970, as given by now
func FileTimer(filename, extension string, now func() time.Time) func() string {
	if now == nil {
		now = time.Now
	}
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, now().UnixNano(), extension)
	}
}
