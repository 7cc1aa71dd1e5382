package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aria/internal/store"
)

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("%s %s\n", a.cfg.Name, a.cfg.Version)
	fmt.Printf("Workspace:            %s\n", a.workspace)
	fmt.Printf("Database:             %s\n", a.store.Path())
	fmt.Printf("Confidence threshold: %.2f\n", a.cfg.Decision.ConfidenceThreshold)
	fmt.Printf("Learning enabled:     %v\n", a.cfg.Decision.LearningEnabled)
	fmt.Printf("Listener enabled:     %v\n", a.cfg.Listener.Enabled)
	if a.cfg.Knowledge.Path != "" {
		fmt.Printf("Knowledge override:   %s (hot reload: %v)\n", a.cfg.Knowledge.Path, a.cfg.Knowledge.HotReload)
	}

	total, err := a.store.InteractionTotal()
	if err != nil {
		return err
	}
	fmt.Printf("\nLearned interactions: %d\n", total)

	perms, err := a.store.Permissions()
	if err != nil {
		return err
	}
	printDomains := func(label string, domains []string) {
		fmt.Printf("%s (%d):\n", label, len(domains))
		for _, d := range domains {
			fmt.Printf("  - %s\n", d)
		}
	}
	fmt.Println()
	printDomains("Trusted domains", perms[store.StatusTrusted])
	printDomains("Blocked domains", perms[store.StatusBlocked])
	return nil
}
