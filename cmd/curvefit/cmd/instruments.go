package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/interpolation"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// InstrumentFile is the YAML input of the fit command.
type InstrumentFile struct {
	ReferenceDate string       `yaml:"reference_date" validate:"required,datetime=2006-01-02"`
	Calendar      string       `yaml:"calendar" default:"NONE" validate:"oneof=NONE TARGET JPN USD KRW"`
	DayCount      string       `yaml:"day_count" default:"ACT/360" validate:"oneof=ACT/360 ACT/365F 30/360 30E/360"`
	Traits        string       `yaml:"traits" default:"discount" validate:"oneof=discount zero"`
	Interpolation string       `yaml:"interpolation" default:"loglinear"`
	Bootstrap     string       `yaml:"bootstrap" default:"iterative" validate:"oneof=iterative local"`
	Swap          SwapSpec     `yaml:"swap"`
	Instruments   []Instrument `yaml:"instruments" validate:"required,min=1,dive"`
}

// SwapSpec is the fixed leg convention shared by all swaps in the file.
// A named Convention preset takes precedence over the individual fields.
type SwapSpec struct {
	Convention           string `yaml:"convention"`
	SettlementDays       int    `yaml:"settlement_days" default:"2" validate:"gte=0"`
	FixedFrequencyMonths int    `yaml:"fixed_frequency_months" default:"12" validate:"gte=1"`
	AccrualDayCount      string `yaml:"accrual_day_count" default:"ACT/360" validate:"oneof=ACT/360 ACT/365F 30/360 30E/360"`
	PayDelay             int    `yaml:"pay_delay" validate:"gte=0"`
}

// Instrument is one quote. Rates are decimals (0.031 for 3.1%).
type Instrument struct {
	Type           string  `yaml:"type" validate:"oneof=deposit fra swap"`
	Tenor          string  `yaml:"tenor"`
	Start          string  `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
	End            string  `yaml:"end" validate:"omitempty,datetime=2006-01-02"`
	StartMonths    int     `yaml:"start_months" validate:"gte=0"`
	EndMonths      int     `yaml:"end_months" validate:"gte=0"`
	SettlementDays int     `yaml:"settlement_days" validate:"gte=0"`
	Rate           float64 `yaml:"rate"`
	Pillar         string  `yaml:"pillar" validate:"omitempty,oneof=last maturity"`
}

var validate = validator.New()

// LoadInstruments reads, defaults and validates an instrument file.
func LoadInstruments(path string) (*InstrumentFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruments: %w", err)
	}
	var f InstrumentFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse instruments: %w", err)
	}
	if err := defaults.Set(&f); err != nil {
		return nil, fmt.Errorf("instrument defaults: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("validate instruments: %w", err)
	}
	return &f, nil
}

// Build turns the file into helpers and the curve options it asks for.
func (f *InstrumentFile) Build() (time.Time, []helpers.RateHelper, []curve.Option, error) {
	ref, err := utils.ParseDate(f.ReferenceDate)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	cal := calendar.CalendarID(f.Calendar)

	in, err := interpolation.ByName(f.Interpolation)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	opts := []curve.Option{curve.WithInterpolator(in)}
	if f.Traits == "zero" {
		opts = append(opts, curve.WithTraits(curve.ZeroYield{}))
	}
	if f.Bootstrap == "local" {
		opts = append(opts, curve.WithBootstrap(curve.NewLocalBootstrap()))
	}

	conv, err := f.Swap.convention(cal)
	if err != nil {
		return time.Time{}, nil, nil, err
	}

	hs := make([]helpers.RateHelper, 0, len(f.Instruments))
	for i, inst := range f.Instruments {
		h, err := inst.helper(ref, cal, f.DayCount, conv)
		if err != nil {
			return time.Time{}, nil, nil, fmt.Errorf("instrument %d (%s): %w", i+1, inst.Type, err)
		}
		hs = append(hs, h)
	}
	return ref, hs, opts, nil
}

func (s SwapSpec) convention(cal calendar.CalendarID) (helpers.SwapConvention, error) {
	if s.Convention != "" {
		return helpers.ConventionByName(s.Convention)
	}
	return helpers.SwapConvention{
		Calendar:             cal,
		SettlementDays:       s.SettlementDays,
		FixedFrequencyMonths: s.FixedFrequencyMonths,
		AccrualDayCount:      s.AccrualDayCount,
		PayDelay:             s.PayDelay,
	}, nil
}

func (inst Instrument) helper(ref time.Time, cal calendar.CalendarID, dayCount string, conv helpers.SwapConvention) (helpers.RateHelper, error) {
	q := quote.NewSimpleQuote(inst.Rate)
	var opts []helpers.Option
	if strings.EqualFold(inst.Pillar, "maturity") {
		opts = append(opts, helpers.WithPillar(helpers.PillarMaturity))
	}

	switch inst.Type {
	case "deposit":
		if inst.Tenor != "" {
			return helpers.NewDepositFromTenor(q, ref, inst.SettlementDays, inst.Tenor, cal, dayCount, opts...)
		}
		start, end, err := explicitDates(inst)
		if err != nil {
			return nil, err
		}
		return helpers.NewDepositHelper(q, start, end, dayCount, opts...)
	case "fra":
		return helpers.NewFRAHelper(q, ref, inst.StartMonths, inst.EndMonths, cal, dayCount, opts...)
	case "swap":
		if inst.Tenor != "" {
			return helpers.NewSwapHelper(q, ref, inst.Tenor, conv, opts...)
		}
		start, end, err := explicitDates(inst)
		if err != nil {
			return nil, err
		}
		return helpers.NewSwapHelperFromDates(q, start, end, conv, opts...)
	}
	return nil, fmt.Errorf("unknown instrument type %q", inst.Type)
}

func explicitDates(inst Instrument) (time.Time, time.Time, error) {
	if inst.Start == "" || inst.End == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either tenor or start and end are required")
	}
	start, err := utils.ParseDate(inst.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := utils.ParseDate(inst.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
