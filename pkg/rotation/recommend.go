package rotation

import (
	"fmt"
	"strings"
)

// TerrainType describes the surface around a flux tower.
type TerrainType int

const (
	TerrainFlat TerrainType = iota
	TerrainRolling
	TerrainComplex
	TerrainUrban
)

func (t TerrainType) String() string {
	switch t {
	case TerrainFlat:
		return "flat"
	case TerrainRolling:
		return "rolling"
	case TerrainComplex:
		return "complex"
	case TerrainUrban:
		return "urban"
	default:
		return fmt.Sprintf("TerrainType(%d)", int(t))
	}
}

// ParseTerrain parses the names produced by TerrainType.String.
func ParseTerrain(s string) (TerrainType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return TerrainFlat, nil
	case "rolling":
		return TerrainRolling, nil
	case "complex":
		return TerrainComplex, nil
	case "urban":
		return TerrainUrban, nil
	default:
		return 0, fmt.Errorf("unknown terrain type %q", s)
	}
}

// RecommendMethod suggests a rotation method for a site. Flat terrain with a
// slope under 5° and rolling terrain under 10° suit double rotation; anything
// else calls for a planar fit. averageWindSpeed does not currently change the
// outcome. The flux pipeline never calls this on its own.
func RecommendMethod(terrain TerrainType, averageWindSpeed, slopeDegrees float64) Method {
	switch {
	case terrain == TerrainFlat && slopeDegrees < 5:
		return DoubleRotation
	case terrain == TerrainRolling && slopeDegrees < 10:
		return DoubleRotation
	default:
		return PlanarFit
	}
}
