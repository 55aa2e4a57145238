package state

import (
	"encoding/json"
	"os"

	"pairchat/pkg/logger"
)

// FileStore persists the active conversation id across runs, the CLI
// analogue of the browser cookie the web client uses.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type persisted struct {
	ActiveConversationID int64 `json:"active_conversation_id"`
}

func (s *FileStore) Load() (int64, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, false
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil || p.ActiveConversationID == 0 {
		return 0, false
	}
	return p.ActiveConversationID, true
}

func (s *FileStore) Save(id int64) {
	data, err := json.Marshal(persisted{ActiveConversationID: id})
	if err != nil {
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		logger.Warn("failed to persist active conversation: %v", err)
	}
}

func (s *FileStore) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to clear active conversation: %v", err)
	}
}
