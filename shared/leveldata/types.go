// Package leveldata provides TMX stage parsing shared between client and server.
// It has no dependencies on simulation or transport code.
package leveldata

// Stage holds the geometry of a fighting stage parsed from a TMX file.
type Stage struct {
	Name        string
	Width       int // full scrollable width in pixels
	Height      int
	SpawnPoints []SpawnPoint
}

// SpawnPoint is a player start position. Index 0 is red, 1 is blue.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// Spawn returns the spawn point for index, if the stage defines one.
func (s *Stage) Spawn(index int) (SpawnPoint, bool) {
	for _, sp := range s.SpawnPoints {
		if sp.Index == index {
			return sp, true
		}
	}
	return SpawnPoint{}, false
}
