// Command hostport reads and writes framed float32 samples over a serial line.
//
// Usage:
//
//	hostport ports
//	hostport --device /dev/ttyACM0 --baud 115200 read --count 3
//	hostport --header 0xABCD1122 --terminator none encode 1 2 3
package main

import "github.com/hostport/hostport-go/internal/cli"

func main() {
	cli.Execute()
}
