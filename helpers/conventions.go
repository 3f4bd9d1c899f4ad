package helpers

import (
	"fmt"
	"sort"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/utils"
)

// Preset fixed-leg conventions for the swaps commonly used to build
// single-currency discount curves.
var (
	ESTROIS = SwapConvention{
		Calendar:             calendar.TARGET,
		SettlementDays:       2,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Act360,
		PayDelay:             1,
	}

	SOFROIS = SwapConvention{
		Calendar:             calendar.USD,
		SettlementDays:       2,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Act360,
		PayDelay:             2,
	}

	TONAROIS = SwapConvention{
		Calendar:             calendar.JPN,
		SettlementDays:       2,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Act365F,
		PayDelay:             2,
	}

	// EURIBOR6MIRS is the annual 30E/360 fixed leg against 6M Euribor.
	EURIBOR6MIRS = SwapConvention{
		Calendar:             calendar.TARGET,
		SettlementDays:       2,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Thirty360E,
	}

	// KRWCD3MIRS pays quarterly ACT/365F against the 91-day CD rate.
	KRWCD3MIRS = SwapConvention{
		Calendar:             calendar.KRW,
		SettlementDays:       1,
		FixedFrequencyMonths: 3,
		AccrualDayCount:      utils.Act365F,
	}
)

var conventions = map[string]SwapConvention{
	"ESTR-OIS":      ESTROIS,
	"SOFR-OIS":      SOFROIS,
	"TONAR-OIS":     TONAROIS,
	"EURIBOR6M-IRS": EURIBOR6MIRS,
	"KRW-CD3M-IRS":  KRWCD3MIRS,
}

// ConventionByName looks up a preset, e.g. "ESTR-OIS".
func ConventionByName(name string) (SwapConvention, error) {
	c, ok := conventions[name]
	if !ok {
		return SwapConvention{}, fmt.Errorf("unknown swap convention %q (known: %v)", name, ConventionNames())
	}
	return c, nil
}

// ConventionNames lists the preset names in sorted order.
func ConventionNames() []string {
	names := make([]string, 0, len(conventions))
	for n := range conventions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
