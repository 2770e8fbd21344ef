package loader

import (
	"strings"

	"github.com/okian/datastrike/internal/domain/model"
)

// Sheet-name keywords per period, checked in order after the name has been
// lower-cased and stripped of spaces, underscores and dashes.
var periodKeywords = []struct {
	period   model.Period
	keywords []string
}{
	{model.PeriodFirst, []string{"1er", "1ro", "primer", "1t", "tiempo1"}},
	{model.PeriodSecond, []string{"2do", "segundo", "2t", "tiempo2"}},
	{model.PeriodExtra, []string{"extra", "et", "tiempoextra"}},
}

var sheetNameStripper = strings.NewReplacer(" ", "", "_", "", "-", "")

// InferPeriod maps a sheet name to a period token. Unmatched names fall back
// to the first period.
func InferPeriod(sheet string) model.Period {
	s := sheetNameStripper.Replace(strings.ToLower(sheet))
	for _, group := range periodKeywords {
		for _, k := range group.keywords {
			if strings.Contains(s, k) {
				return group.period
			}
		}
	}
	return model.PeriodFirst
}
