package employee

import (
	"fmt"
	"slices"
	"strings"
)

// WorkLocation は勤務地カタログの値です。
type WorkLocation string

const (
	LocationSanFranciscoHQ WorkLocation = "San Francisco HQ"
	LocationNewYorkOffice  WorkLocation = "New York Office"
	LocationAustinOffice   WorkLocation = "Austin Office"
	LocationLondonOffice   WorkLocation = "London Office"
	LocationRemote         WorkLocation = "Remote"
	LocationHybrid         WorkLocation = "Hybrid"
)

var workLocations = []WorkLocation{
	LocationSanFranciscoHQ,
	LocationNewYorkOffice,
	LocationAustinOffice,
	LocationLondonOffice,
	LocationRemote,
	LocationHybrid,
}

func ParseWorkLocation(name string) (WorkLocation, error) {
	candidate := WorkLocation(strings.TrimSpace(name))
	for _, l := range workLocations {
		if l == candidate {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLocation, name)
}

func (l WorkLocation) Validate() error {
	if !slices.Contains(workLocations, l) {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, string(l))
	}
	return nil
}

func (l WorkLocation) String() string { return string(l) }

// IsRemote は Remote または Hybrid の場合に true です。
func (l WorkLocation) IsRemote() bool {
	return l == LocationRemote || l == LocationHybrid
}
