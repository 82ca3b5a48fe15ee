package pipeline

import (
	"errors"

	"github.com/couchcryptid/tmy3-convert/internal/adapter/weatherfile"
	"github.com/couchcryptid/tmy3-convert/internal/domain"
)

// transformLine splits one source line and maps it onto the TMY3 layout.
func transformLine(line string) (domain.TargetRecord, error) {
	rec, err := weatherfile.SplitRecord(line)
	if err != nil {
		return domain.TargetRecord{}, err
	}
	return domain.MapRow(rec)
}

// skipReason maps a row failure to the metric label used for it.
func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTooFewFields):
		return "too_few_fields"
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domain.ErrMalformedNumber):
		return "malformed_number"
	default:
		return "unparseable"
	}
}
