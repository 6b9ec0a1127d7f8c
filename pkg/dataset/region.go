package dataset

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Region is one of the five macro-regions a country belongs to.
type Region int

const (
	RegionUnknown Region = iota
	RegionOceania
	RegionEurope
	RegionAmericas
	RegionAsia
	RegionAfrica
)

// Regions lists the known regions in legend order.
var Regions = []Region{RegionOceania, RegionEurope, RegionAmericas, RegionAsia, RegionAfrica}

var regionNames = map[Region]string{
	RegionUnknown:  "Unknown",
	RegionOceania:  "Oceania",
	RegionEurope:   "Europe",
	RegionAmericas: "Americas",
	RegionAsia:     "Asia",
	RegionAfrica:   "Africa",
}

// Silver, Yellow, DodgerBlue, Tomato, MediumSlateBlue; gray for unknown.
var regionColors = map[Region]colorful.Color{
	RegionUnknown:  mustHex("#808080"),
	RegionOceania:  mustHex("#C0C0C0"),
	RegionEurope:   mustHex("#FFFF00"),
	RegionAmericas: mustHex("#1E90FF"),
	RegionAsia:     mustHex("#FF6347"),
	RegionAfrica:   mustHex("#7B68EE"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseRegion maps a free-text label onto a Region, case-insensitively.
// "America", "North America" and "South America" all resolve to Americas.
func ParseRegion(s string) Region {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return RegionUnknown
	case strings.Contains(s, "america"):
		return RegionAmericas
	}
	for r, name := range regionNames {
		if strings.ToLower(name) == s {
			return r
		}
	}
	return RegionUnknown
}

func (r Region) String() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

// Color returns the region's display color.
func (r Region) Color() colorful.Color {
	if c, ok := regionColors[r]; ok {
		return c
	}
	return regionColors[RegionUnknown]
}

// Hex returns the display color as "#rrggbb".
func (r Region) Hex() string {
	return r.Color().Hex()
}

func (r Region) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Region) UnmarshalText(b []byte) error {
	*r = ParseRegion(string(b))
	return nil
}
