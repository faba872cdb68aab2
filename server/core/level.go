package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/automoto/duelcore/shared/leveldata"
)

// LoadStage reads a stage TMX from disk. An empty path means the default
// stage width from config.
func LoadStage(path string) (*leveldata.Stage, error) {
	if path == "" {
		return nil, nil
	}
	stage, err := leveldata.LoadStage(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("load stage: %w", err)
	}
	log.Printf("[server] loaded stage %s: %dx%d, %d spawn points",
		stage.Name, stage.Width, stage.Height, len(stage.SpawnPoints))
	return stage, nil
}
