package main

import (
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2"

	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/hselasky/jack-umidi/sdk/umidi"
)

// Decodes a raw MIDI byte dump, e.g. one captured with
// `cat /dev/umidi0.0 > dump.raw`, and prints every framed message.
func main() {
	log := logger.NewZapLogger()
	log.SetLevel(contracts.InfoLevel)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: simple_use <raw midi dump>")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Error("Failed to read MIDI dump", log.Field().Error("error", err))
		return
	}

	parser := umidi.NewParser(0)
	count := 0
	for i, b := range data {
		pkt, ok := parser.Advance(b)
		if !ok || pkt.Len() == 0 {
			continue
		}
		count++
		log.Info("MIDI message",
			log.Field().Int("Offset", i),
			log.Field().Uint8("CIN", pkt.CIN()),
			log.Field().Bytes("Packet", pkt[:]),
			log.Field().String("Message", midi.Message(pkt.Bytes()).String()),
		)
	}
	fmt.Printf("%d bytes, %d messages\n", len(data), count)
}
