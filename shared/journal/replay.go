package journal

import (
	"fmt"

	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/netconfig"
)

// Replay re-simulates a recorded match on fresh players and returns the
// final match along with every hit that landed. stage should be the
// journal's Header.Stage.
func Replay(red, blue *fighterdata.Fighter, stage *leveldata.Stage, records []Record) (*match.Match, []match.HitEvent, error) {
	m, err := match.New(match.Options{
		Red:           red,
		Blue:          blue,
		RedMode:       netconfig.ModeNet,
		BlueMode:      netconfig.ModeNet,
		Stage:         stage,
		Authoritative: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("replay: %w", err)
	}

	var hits []match.HitEvent
	for i, rec := range records {
		switch rec.Kind {
		case KindInput:
			if rec.Color != netconfig.Red && rec.Color != netconfig.Blue {
				return nil, nil, fmt.Errorf("replay record %d: bad color %d", i, rec.Color)
			}
			m.ApplyInput(rec.Color, rec.Button, rec.Pressed, rec.Dt)
		case KindTick:
			hits = append(hits, m.Tick(rec.Dt)...)
		default:
			return nil, nil, fmt.Errorf("replay record %d: unknown kind %d", i, rec.Kind)
		}
	}
	return m, hits, nil
}
