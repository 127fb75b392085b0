package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FillInitOptionsInteractive prompts the user to confirm or override defaults.
// If stdin is not interactive, it will keep the provided defaults.
func FillInitOptionsInteractive(opts *InitOptions) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Directory name [%s]: ", opts.Name)
	if s, _ := reader.ReadString('\n'); strings.TrimSpace(s) != "" {
		opts.Name = strings.TrimSpace(s)
	}

	defTitle := opts.Title
	if defTitle == "" {
		defTitle = opts.Name
	}
	fmt.Printf("Library title [%s]: ", defTitle)
	if s, _ := reader.ReadString('\n'); strings.TrimSpace(s) != "" {
		opts.Title = strings.TrimSpace(s)
	} else if opts.Title == "" {
		opts.Title = defTitle
	}

	fmt.Printf("Content directory [%s]: ", opts.ContentDir)
	if s, _ := reader.ReadString('\n'); strings.TrimSpace(s) != "" {
		opts.ContentDir = strings.TrimSpace(s)
	}

	fmt.Printf("Build directory [%s]: ", opts.BuildDir)
	if s, _ := reader.ReadString('\n'); strings.TrimSpace(s) != "" {
		opts.BuildDir = strings.TrimSpace(s)
	}
}
