package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/asticode/go-astikit"
	"github.com/ts-tools/tsencap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Scan a raw MPEG-1/2 audio elementary stream and print its frame headers\n")
		fmt.Fprintf(flag.CommandLine.Output(), "%s [FLAGS] INPUT_FILE:\n", os.Args[0])
		flag.PrintDefaults()
	}
	inputFile := astikit.FlagCmd()
	flag.Parse()

	data, err := os.ReadFile(inputFile)
	if err != nil {
		log.Fatalf("tsencap-audioprobe: reading %s failed: %v", inputFile, err)
	}

	it := tsencap.NewNoAllocBytesIterator(data)
	attrs := tsencap.NewAudioAttributes()

	var frames int
	for it.HasBytesLeft() {
		b, err := it.NextByte()
		if err != nil {
			break
		}
		if b != 0xff {
			continue
		}

		start := it.Offset() - 1
		header, err := it.NextBytesNoCopy(3)
		if err != nil {
			break
		}

		candidate := append([]byte{0xff}, header...)
		if attrs.MoreBinaryData(candidate) {
			frames++
			fmt.Printf("frame #%d @%d: %s\n", frames, start, attrs)
		}
		it.Seek(start + 1)
	}

	log.Printf("scanned %d bytes, found %d distinct frame headers", len(data), frames)
}
