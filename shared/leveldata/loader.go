package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// LoadStage parses a TMX file and returns the stage width and player spawn
// points. It takes an fs.FS so callers can pass embed.FS or os.DirFS.
func LoadStage(fsys fs.FS, tmxPath string) (*Stage, error) {
	stageMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	stage := &Stage{
		Name:   strings.TrimSuffix(filepath.Base(tmxPath), filepath.Ext(tmxPath)),
		Width:  stageMap.Width * stageMap.TileWidth,
		Height: stageMap.Height * stageMap.TileHeight,
	}

	// Parse player spawn points from PlayerSpawn object group
	for _, og := range stageMap.ObjectGroups {
		if og.Name != "PlayerSpawn" {
			continue
		}
		for _, o := range og.Objects {
			stage.SpawnPoints = append(stage.SpawnPoints, SpawnPoint{
				X:     o.X,
				Y:     o.Y,
				Index: o.Properties.GetInt("spawnIndex"),
			})
		}
	}

	// Sort spawns left-to-right for consistent assignment
	sort.Slice(stage.SpawnPoints, func(i, j int) bool {
		return stage.SpawnPoints[i].X < stage.SpawnPoints[j].X
	})

	if stage.Width <= 0 {
		return nil, fmt.Errorf("load TMX %s: stage has no width", tmxPath)
	}
	return stage, nil
}
