package domain

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/parking-finder/internal/pkg/utils"
)

const (
	GeometryPoint        = "Point"
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// Geometry - геометрия места в WGS84. В JSON это GeoJSON geometry object.
type Geometry struct {
	Type  string
	Shape orb.Geometry
}

// NewGeometry проверяет orb-геометрию: Point, Polygon или MultiPolygon
// с координатами в допустимых диапазонах
func NewGeometry(shape orb.Geometry) (Geometry, error) {
	if err := validateShape(shape); err != nil {
		return Geometry{}, err
	}
	return Geometry{Type: shape.GeoJSONType(), Shape: shape}, nil
}

// ParseGeometry разбирает и проверяет GeoJSON геометрию
func ParseGeometry(raw []byte) (Geometry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Geometry{}, fmt.Errorf("%w: geometry is empty", ErrInvalidGeometry)
	}

	g, err := geojson.UnmarshalGeometry(trimmed)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	return NewGeometry(g.Geometry())
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.Shape == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(g.Shape).MarshalJSON()
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	parsed, err := ParseGeometry(data)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// DistanceTo возвращает расстояние в метрах от точки до геометрии.
// Точка внутри полигона находится на расстоянии 0.
func (g Geometry) DistanceTo(p Point) (float64, error) {
	origin := orb.Point{p.Lon, p.Lat}

	switch s := g.Shape.(type) {
	case orb.Point:
		return geo.DistanceHaversine(origin, s), nil
	case orb.Polygon:
		return polygonDistance(s, origin), nil
	case orb.MultiPolygon:
		best := math.Inf(1)
		for _, poly := range s {
			best = math.Min(best, polygonDistance(poly, origin))
		}
		return best, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %q", ErrInvalidGeometry, g.Type)
	}
}

func validateShape(shape orb.Geometry) error {
	switch s := shape.(type) {
	case nil:
		return fmt.Errorf("%w: geometry is empty", ErrInvalidGeometry)
	case orb.Point:
		return validatePoint(s)
	case orb.Polygon:
		return validatePolygon(s)
	case orb.MultiPolygon:
		if len(s) == 0 {
			return fmt.Errorf("%w: multipolygon has no polygons", ErrInvalidGeometry)
		}
		for _, poly := range s {
			if err := validatePolygon(poly); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrInvalidGeometry, shape.GeoJSONType())
	}
}

func validatePoint(pt orb.Point) error {
	if !utils.ValidateCoordinates(pt.Lat(), pt.Lon()) {
		return fmt.Errorf("%w: position %v out of range", ErrInvalidGeometry, pt)
	}
	return nil
}

func validatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 {
		return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	for _, ring := range poly {
		if len(ring) < 4 {
			return fmt.Errorf("%w: ring needs at least 4 positions", ErrInvalidGeometry)
		}
		for _, pt := range ring {
			if err := validatePoint(pt); err != nil {
				return err
			}
		}
	}
	return nil
}

// polygonDistance считает в локальной плоскости вокруг origin, где origin = (0, 0)
func polygonDistance(poly orb.Polygon, origin orb.Point) float64 {
	local := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		local[i] = make(orb.Ring, len(ring))
		for j, pt := range ring {
			local[i][j] = toLocal(origin, pt)
		}
	}

	center := orb.Point{}
	if planar.PolygonContains(local, center) {
		return 0
	}

	best := math.Inf(1)
	for _, ring := range local {
		for i := 0; i+1 < len(ring); i++ {
			best = math.Min(best, planar.DistanceFromSegment(ring[i], ring[i+1], center))
		}
	}
	return best
}

// toLocal - равнопромежуточная проекция в метры относительно origin.
// Разность долгот приводится к [-180, 180] для полигонов через антимеридиан.
func toLocal(origin, pt orb.Point) orb.Point {
	const rad = math.Pi / 180
	dLon := math.Remainder(pt.Lon()-origin.Lon(), 360)
	return orb.Point{
		dLon * rad * orb.EarthRadius * math.Cos(origin.Lat()*rad),
		(pt.Lat() - origin.Lat()) * rad * orb.EarthRadius,
	}
}
