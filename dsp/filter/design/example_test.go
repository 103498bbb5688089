package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-voice/dsp/filter/biquad"
	"github.com/cwbudde/algo-voice/dsp/filter/design"
)

func ExampleButterworthLowpass() {
	sections, err := design.ButterworthLowpass(8000, 4, 44100)
	if err != nil {
		panic(err)
	}

	chain := biquad.NewChain(sections)
	fmt.Printf("sections=%d order=%d\n", chain.NumSections(), chain.Order())
	fmt.Printf("cutoff=%.2f dB\n", chain.MagnitudeDB(8000, 44100))
	// Output:
	// sections=2 order=4
	// cutoff=-3.01 dB
}

func ExampleButterworthBandpass() {
	sections, err := design.ButterworthBandpass(300, 3400, 4, 8000)
	if err != nil {
		panic(err)
	}

	chain := biquad.NewChain(sections)
	fmt.Printf("sections=%d\n", chain.NumSections())
	fmt.Printf("low=%.2f dB high=%.2f dB\n", chain.MagnitudeDB(300, 8000), chain.MagnitudeDB(3400, 8000))
	// Output:
	// sections=4
	// low=-3.01 dB high=-3.01 dB
}
