package tools

import (
	"regexp"
	"strings"

	"stockpulse/pkg/errors"
)

// tickerPattern accepts letters and digits plus an optional class or
// exchange suffix (BRK.B, RDS-A, 0700.HK). Total length is capped at
// maxTickerLen.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]+([.-][A-Z0-9]+)?$`)

const maxTickerLen = 10

// NormalizeTicker uppercases and trims a ticker symbol, rejecting
// anything that does not look like one.
func NormalizeTicker(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", errors.Wrap(errors.ErrInvalidSymbol, "empty symbol")
	}
	if len(symbol) > maxTickerLen || !tickerPattern.MatchString(symbol) {
		return "", errors.Wrapf(errors.ErrInvalidSymbol, "symbol %q", raw)
	}
	return symbol, nil
}

// symbolArg extracts and validates the "symbol" argument.
func symbolArg(args map[string]interface{}) (string, error) {
	raw, _ := args["symbol"].(string)
	return NormalizeTicker(raw)
}
