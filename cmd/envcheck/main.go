// Command envcheck validates the API environment contract and exits
// non-zero when anything is missing or unsafe.
package main

import (
	"fmt"
	"os"

	"zuvomo/internal/config"
)

func main() {
	cfg := config.LoadAPI()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "environment check failed for %s:\n%v\n", cfg.Env, err)
		os.Exit(1)
	}

	fmt.Printf("environment ok (%s)\n", cfg.Env)
	for _, p := range cfg.OAuth {
		state := "disabled"
		if p.Configured() {
			state = "configured"
		}
		fmt.Printf("  oauth %-8s %s\n", p.Name, state)
	}
	if cfg.SMTP.Host == "" {
		fmt.Println("  smtp     disabled, review notices will not be sent")
	}
}
