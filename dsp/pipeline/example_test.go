package pipeline_test

import (
	"fmt"

	"github.com/cwbudde/algo-voice/dsp/pipeline"
)

func ExamplePipeline_ProcessIncoming() {
	cfg := pipeline.DefaultConfig()
	cfg.TelephoneMode = true

	p, err := pipeline.New(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	silence := make([]int16, cfg.ChunkSize)
	out, db, err := p.ProcessIncoming(silence, silence)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d samples, %.1f dB, gate open: %v\n", len(out), db, p.GateOpen())

	_, _, err = p.ProcessIncoming(silence[:100], nil)
	fmt.Println(err != nil)
	// Output:
	// 1024 samples, -60.0 dB, gate open: false
	// true
}
