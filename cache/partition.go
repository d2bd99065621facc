package cache

import (
	"fmt"
	"strings"
)

// Partition names one cache partition of a load context.
//
// The same key may be cached in several partitions under different decode or
// ownership policies without collision.
type Partition uint8

const (
	// PartitionMain holds records resolved through the regular object graph.
	PartitionMain Partition = iota
	// PartitionAudio holds sound records, which are large and usually bounded.
	PartitionAudio
	// PartitionScratch holds one-shot reads such as listings and previews.
	PartitionScratch

	partitionCount
)

var partitionNames = [partitionCount]string{
	PartitionMain:    "main",
	PartitionAudio:   "audio",
	PartitionScratch: "scratch",
}

func (p Partition) String() string {
	if p < partitionCount {
		return partitionNames[p]
	}

	return fmt.Sprintf("partition(%d)", uint8(p))
}

// Valid reports whether p is a known partition.
func (p Partition) Valid() bool {
	return p < partitionCount
}

// Partitions returns every known partition in declaration order.
func Partitions() []Partition {
	return []Partition{PartitionMain, PartitionAudio, PartitionScratch}
}

// ParsePartition parses a partition from its name, case-insensitively.
func ParsePartition(name string) (Partition, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for p, n := range partitionNames {
		if n == lower {
			return Partition(p), nil //nolint: gosec
		}
	}

	return PartitionMain, fmt.Errorf("unknown cache partition: %q", name)
}
