package graphstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// ensureDir creates the local intents directory if it does not exist.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// writeLocalCopy persists the Turtle document under <localDir>/<intentID>.ttl
// and returns the path recorded as provenance. This is the optional
// "/intents/<IntentID>.ttl" filesystem artefact named in the external
// interfaces list.
func (c *Client) writeLocalCopy(intentID, ttl string) (string, error) {
	if c.localDir == "" {
		return "", nil
	}
	path := filepath.Join(c.localDir, fmt.Sprintf("%s.ttl", intentID))
	if err := os.WriteFile(path, []byte(ttl), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// removeLocalCopy deletes the persisted copy for an intent, if any.
func removeLocalCopy(localDir, intentID string) error {
	if localDir == "" {
		return nil
	}
	path := filepath.Join(localDir, fmt.Sprintf("%s.ttl", intentID))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}
