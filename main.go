package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/interpolation"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

func main() {
	ref := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)

	// KRW CD 3M and IRS par rates (%)
	deposit := 2.5524458035
	swaps := []struct {
		tenor string
		rate  float64
	}{
		{"1Y", 2.7225000000},
		{"2Y", 2.8075000000},
		{"3Y", 2.8882142857},
		{"5Y", 3.0189285714},
		{"7Y", 3.0889285714},
		{"10Y", 3.1578571429},
		{"15Y", 3.1757142857},
		{"20Y", 3.0946428571},
	}

	conv := helpers.SwapConvention{
		Calendar:             calendar.KRW,
		SettlementDays:       1,
		FixedFrequencyMonths: 3,
		AccrualDayCount:      utils.Act365F,
	}

	depQuote := quote.NewSimpleQuote(deposit / 100)
	cd, err := helpers.NewDepositFromTenor(depQuote, ref, 1, "3M", calendar.KRW, utils.Act365F)
	if err != nil {
		fmt.Println("deposit:", err)
		os.Exit(1)
	}
	hs := []helpers.RateHelper{cd}
	for _, s := range swaps {
		h, err := helpers.NewSwapHelper(quote.NewSimpleQuote(s.rate/100), ref, s.tenor, conv)
		if err != nil {
			fmt.Println("swap", s.tenor+":", err)
			os.Exit(1)
		}
		hs = append(hs, h)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	c, err := curve.New(ref, hs,
		curve.WithInterpolator(interpolation.MonotoneCubic{}),
		curve.WithLogger(logger),
	)
	if err != nil {
		fmt.Println("curve:", err)
		os.Exit(1)
	}
	defer c.Close()

	nodes, err := c.Nodes()
	if err != nil {
		fmt.Println("bootstrap:", err)
		return
	}
	for _, n := range nodes {
		z, _ := c.ZeroRate(n.Date)
		fmt.Printf("%s  t=%8.5f  df=%.10f  zero=%.6f%%\n", utils.FormatDate(n.Date), n.Time, n.Value, z*100)
	}

	// bump the 3M fixing; the curve refits on next access
	depQuote.SetValue((deposit + 0.10) / 100)
	df5y, err := c.Discount(utils.AddMonth(ref, 60))
	if err != nil {
		fmt.Println("refit:", err)
		return
	}
	fmt.Printf("5Y discount after +10bp CD bump: %.10f (iterations %d)\n", df5y, c.Bootstrapper().Iterations())
}
