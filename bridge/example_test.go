package bridge_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cwbudde/algo-voice/bridge"
	"github.com/cwbudde/algo-voice/dsp/pipeline"
)

func ExampleSession_Run() {
	cfg := pipeline.DefaultConfig()

	// Two seconds of silence captured at A, nothing at B.
	capturedA := bytes.NewReader(make([]byte, 2*2*44100))
	capturedB := bytes.NewReader(nil)

	var playedA, playedB bytes.Buffer

	srcA, _ := bridge.NewPCMReader(capturedA, cfg.ChunkSize)
	srcB, _ := bridge.NewPCMReader(capturedB, cfg.ChunkSize)

	s, err := bridge.NewSession(cfg,
		bridge.Endpoint{Source: srcA, Sink: bridge.NewPCMWriter(&playedA)},
		bridge.Endpoint{Source: srcB, Sink: bridge.NewPCMWriter(&playedB)},
		bridge.WithPolicy(bridge.PolicyMute),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := s.Run(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	st := s.Stats(bridge.AToB)
	fmt.Printf("read %d, played %d, muted %d, bytes at B %d\n", st.Read, st.Played, st.Muted, playedB.Len())
	// Output:
	// read 87, played 87, muted 1, bytes at B 178176
}
