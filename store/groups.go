package store

import (
	"encoding/json"
	"fmt"

	"github.com/sky-flux/flashcards"
)

// groupsVersion is the format version written with custom card groups.
const groupsVersion = 1

func encodeGroups(groups []flashcards.CardGroup) (int, string, error) {
	if groups == nil {
		groups = []flashcards.CardGroup{}
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return 0, "", fmt.Errorf("encode card groups: %w", err)
	}
	return groupsVersion, string(data), nil
}

// decodeGroups reads groups written by encodeGroups. Unknown fields are
// ignored so older binaries can read newer rows of the same version.
func decodeGroups(version int, data string) ([]flashcards.CardGroup, error) {
	if version != groupsVersion {
		return nil, fmt.Errorf("%w: %d", ErrGroupsVersion, version)
	}
	var groups []flashcards.CardGroup
	if err := json.Unmarshal([]byte(data), &groups); err != nil {
		return nil, fmt.Errorf("decode card groups: %w", err)
	}
	return groups, nil
}
