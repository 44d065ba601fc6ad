package config

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Region is the bounding box imported coordinates must fall inside.
// Loaded once at startup and injected into the validators.
type Region struct {
	MinX decimal.Decimal
	MinY decimal.Decimal
	MaxX decimal.Decimal
	MaxY decimal.Decimal
}

// Contains reports whether the point lies inside the region, bounds
// inclusive.
func (r Region) Contains(x, y decimal.Decimal) bool {
	return x.GreaterThanOrEqual(r.MinX) && x.LessThanOrEqual(r.MaxX) &&
		y.GreaterThanOrEqual(r.MinY) && y.LessThanOrEqual(r.MaxY)
}

// LoadRegion reads the validation bounding box from the environment,
// defaulting to the whole WGS84 range when unset.
func LoadRegion() Region {
	region := Region{
		MinX: decimal.NewFromInt(-180),
		MinY: decimal.NewFromInt(-90),
		MaxX: decimal.NewFromInt(180),
		MaxY: decimal.NewFromInt(90),
	}

	parse := func(key string, dst *decimal.Decimal) {
		raw := GetEnv(key)
		if raw == "" {
			return
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			Logger.Warn("Invalid region bound, keeping default",
				zap.String("key", key),
				zap.String("value", raw),
			)
			return
		}
		*dst = v
	}

	parse("REGION_MIN_X", &region.MinX)
	parse("REGION_MIN_Y", &region.MinY)
	parse("REGION_MAX_X", &region.MaxX)
	parse("REGION_MAX_Y", &region.MaxY)

	return region
}
