// Command demoserver serves a small site whose pages switch between an
// inaccessible and a fixed version, to try rgaalint site audits and
// history diffs against.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/rgaalint/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Addr = fmt.Sprintf("localhost:%d", port)
	}

	fmt.Println("===========================================")
	fmt.Println("   rgaalint demo site")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Every page has two versions: v1 breaks some RGAA")
	fmt.Println("criteria, v2 fixes them. Switch versions from the")
	fmt.Println("control panel and compare audits with:")
	fmt.Println()
	fmt.Printf("  rgaalint site http://%s/ --store ~/.rgaalint\n", cfg.Addr)
	fmt.Println("  rgaalint history diff <base-id> <head-id> --store ~/.rgaalint")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
