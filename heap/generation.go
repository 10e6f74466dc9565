package heap

import "fmt"

// Generation names one of the three nominal heap generations: Hatchery
// is the nursery-equivalent and the default allocation target, LocalHeap
// is the mid-life generation, Tenured is the oldest and most-promoted.
// GenInvalid is the zero value so a zero Ref (see ref.go) reads as "no
// generation", matching a null address.
type Generation uint8

const (
	GenInvalid Generation = iota
	GenHatchery
	GenLocalHeap
	GenTenured

	genCount
)

func (g Generation) String() string {
	switch g {
	case GenHatchery:
		return "hatchery"
	case GenLocalHeap:
		return "local-heap"
	case GenTenured:
		return "tenured"
	default:
		return fmt.Sprintf("Generation(%d)", uint8(g))
	}
}

// Valid reports whether g names one of the three real generations.
func (g Generation) Valid() bool {
	return g > GenInvalid && g < genCount
}
