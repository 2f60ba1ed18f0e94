package roster

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ritzau/santa-ring/pkg/model"
)

// entry mirrors one [[participants]] table in the roster file.
type entry struct {
	Name     string   `koanf:"name"`
	Excludes []string `koanf:"excludes"`
}

// Load reads a TOML roster file into the participant model. The expected
// format is a list of participant tables:
//
//	[[participants]]
//	name = "alice"
//	excludes = ["bob"]
//
// Exclusions are directional; a couple that must not draw each other lists
// each other in both entries. Only structural problems are reported here,
// semantic validation (duplicates, unknown excluded names) happens in the
// scheduler.
func Load(path string) ([]model.Participant, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}

	var entries []entry
	if err := k.Unmarshal("participants", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("roster %s contains no participants", path)
	}

	participants := make([]model.Participant, 0, len(entries))
	for _, e := range entries {
		participants = append(participants, model.Participant{
			Name:     e.Name,
			Excludes: e.Excludes,
		})
	}

	return participants, nil
}
