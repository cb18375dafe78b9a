package services

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"pipeline-profile-service/internal/domain"
)

// fingerprintVersion changes whenever the result layout or algorithms change,
// so stale cache entries stop matching.
const fingerprintVersion = "v1"

// Fingerprint derives a cache key from the profile input and the options used
// to build it. Equal inputs and options always give equal keys.
func Fingerprint(in *domain.ProfileInput, opts ProfileOptions) string {
	h := xxhash.New()
	var buf [8]byte

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	writeSeries := func(s []float64) {
		writeFloat(float64(len(s)))
		for _, v := range s {
			writeFloat(v)
		}
	}
	writeString := func(s string) {
		writeFloat(float64(len(s)))
		_, _ = h.WriteString(s)
	}

	writeString(fingerprintVersion)
	writeString(in.Route)
	writeSeries(in.Ground)
	writeSeries(in.Pipe)
	writeSeries(in.Hydraulic)

	eq := in.Equipment
	writeFloat(float64(len(eq.Hydrants)))
	for _, hy := range eq.Hydrants {
		writeFloat(hy.At)
		writeFloat(float64(hy.OutletCount))
	}
	writeFloat(float64(len(eq.Junctions)))
	for _, j := range eq.Junctions {
		writeFloat(j.At)
		writeString(j.Label)
	}
	writeFloat(float64(len(eq.Bkvs)))
	for _, b := range eq.Bkvs {
		writeFloat(b.At)
		if b.StaticLevel != nil {
			writeFloat(1)
			writeFloat(*b.StaticLevel)
		} else {
			writeFloat(0)
		}
	}
	writeSeries(eq.ManualAirValves)
	writeSeries(eq.ManualDrains)

	writeFloat(opts.Band.ScanStep)
	writeFloat(float64(opts.Band.BandHeight))
	writeFloat(float64(opts.Hydraulic.ValueMode))
	writeFloat(opts.Hydraulic.ValueToMeters)
	writeFloat(opts.Hydraulic.MicroBreakStep)
	writeFloat(opts.ConflictTolerance)
	writeFloat(opts.Transform.OriginX)
	writeFloat(opts.Transform.TopReferenceY)
	writeFloat(opts.Transform.UnitsPerDistance)
	writeFloat(opts.Transform.UnitsPerElevation)
	writeFloat(opts.Transform.PanelSpacing)

	return "profile:" + strconv.FormatUint(h.Sum64(), 16)
}
