// Command devices lists the host's audio output devices. Useful when the
// player refuses to start because no output device could be bound.
package main

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

func main() {
	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("portaudio: %v", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		log.Fatalf("list devices: %v", err)
	}

	def, _ := portaudio.DefaultOutputDevice()

	for _, dev := range devices {
		if dev.MaxOutputChannels == 0 {
			continue
		}
		marker := " "
		if def != nil && dev.Name == def.Name {
			marker = "*"
		}
		fmt.Printf("%s %-40s  %d ch  %.0f Hz  %v latency\n",
			marker, dev.Name, dev.MaxOutputChannels, dev.DefaultSampleRate, dev.DefaultLowOutputLatency)
	}

	if def == nil {
		fmt.Println("no default output device")
	}
}
