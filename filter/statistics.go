package filter

import (
	"github.com/xaionaro-go/pinflow/types"
)

type Statistics = types.Statistics
type Counters = types.Counters

// GetStatistics returns the frames counted on the private pins of the filter.
func (f *Filter) GetStatistics() Statistics {
	return f.Counters.ToStats()
}
