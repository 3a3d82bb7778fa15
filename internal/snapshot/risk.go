package snapshot

import (
	"strings"

	"aeroScope/internal/model"
)

var (
	stableSymbols = []string{"USDC", "USDT", "DAI", "USDBC", "USD+", "USDA", "EURC"}
	ethSymbols    = []string{"WETH", "ETH", "CBETH", "RETH", "STETH", "WSTETH"}
)

func containsAny(symbol string, needles []string) bool {
	s := strings.ToUpper(symbol)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// IsStablePair reports whether both symbols look like stablecoins.
func IsStablePair(symbol0, symbol1 string) bool {
	return containsAny(symbol0, stableSymbols) && containsAny(symbol1, stableSymbols)
}

// ILRiskFor classifies a pair by symbol: stable pairs and ETH-variant pairs are low risk.
func ILRiskFor(symbol0, symbol1 string) model.ILRisk {
	if IsStablePair(symbol0, symbol1) {
		return model.ILRiskNo
	}
	if containsAny(symbol0, ethSymbols) && containsAny(symbol1, ethSymbols) {
		return model.ILRiskNo
	}
	return model.ILRiskYes
}

func ilRiskFromFeed(risk string) (model.ILRisk, bool) {
	switch strings.ToLower(risk) {
	case "yes":
		return model.ILRiskYes, true
	case "no":
		return model.ILRiskNo, true
	}
	return model.ILRiskUnknown, false
}
