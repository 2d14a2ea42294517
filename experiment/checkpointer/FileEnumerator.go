package checkpointer

import (
	"fmt"
	"path/filepath"
	"sync"
)

// FilenameEnumerator returns a function which returns filenames with a
// counter suffix, one higher on every call, e.g. agent1.json,
// agent2.json, ... The counter begins after start.
func FilenameEnumerator(start int, filename, extension string) func() string {
	var mu sync.Mutex
	i := start

	return func() string {
		mu.Lock()
		defer mu.Unlock()
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}

// AgentFilenames returns an enumerator for the checkpoints of one agent
// saved in dir
func AgentFilenames(dir string, agentID int, extension string) func() string {
	prefix := filepath.Join(dir, fmt.Sprintf("agent%d-", agentID))
	return FilenameEnumerator(0, prefix, extension)
}
