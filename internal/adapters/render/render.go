// Package render draws built profiles as static images or interactive charts.
package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/ports"
)

var ErrUnsupportedFormat = errors.New("unsupported render format")

// Set picks a renderer by output format.
type Set []ports.ProfileRenderer

func (s Set) For(format string) (ports.ProfileRenderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, r := range s {
		if slices.Contains(r.Formats(), format) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Formats lists every format the set can produce.
func (s Set) Formats() []string {
	var out []string
	for _, r := range s {
		out = append(out, r.Formats()...)
	}
	return out
}

func checkResult(res *domain.ProfileResult) error {
	if res == nil || res.Bands == nil || res.Bands.Count() == 0 {
		return errors.New("render: empty profile result")
	}
	return nil
}

func equipmentLabel(it domain.EquipmentItem) string {
	switch v := it.(type) {
	case domain.Hydrant:
		return fmt.Sprintf("H%d", v.OutletCount)
	case domain.Junction:
		return v.Label
	case domain.Bkv:
		return "BKV"
	case domain.AirValve:
		return "AV"
	case domain.Drain:
		return "D"
	}
	return string(it.Kind())
}
