package apr

import (
	"math"
	"regexp"
	"strconv"
)

const (
	defaultTickSpacing int32  = 100
	defaultFee         uint32 = 500
)

var poolMetaPattern = regexp.MustCompile(`CL(\d+)\s*-\s*([\d.]+)%`)

// feeBySpacing maps Slipstream tick spacings to their usual fee in hundredths of a bip.
var feeBySpacing = map[int32]uint32{
	1:   100,
	10:  500,
	50:  3000,
	100: 500,
	200: 1000,
}

// ParsePoolMeta reads tick spacing and fee from a label such as "CL100 - 0.05%".
// Unparseable labels fall back to CL100 at 0.05%.
func ParsePoolMeta(meta string) (int32, uint32) {
	match := poolMetaPattern.FindStringSubmatch(meta)
	if match == nil {
		return defaultTickSpacing, defaultFee
	}
	spacing, err := strconv.ParseInt(match[1], 10, 32)
	if err != nil {
		return defaultTickSpacing, defaultFee
	}
	feePercent, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return defaultTickSpacing, defaultFee
	}
	return int32(spacing), uint32(math.Round(feePercent * 10000))
}

// FeeForTickSpacing returns the fee tier usually paired with a tick spacing.
func FeeForTickSpacing(spacing int32) uint32 {
	if fee, ok := feeBySpacing[spacing]; ok {
		return fee
	}
	return defaultFee
}
