package infra

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizarTelefono returns raw in E.164 form. Numbers without a country
// prefix are read in region (ISO 3166 alpha-2, "VE" by default).
func NormalizarTelefono(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = "VE"
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("telefono %q: %w", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("telefono %q no es valido", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
