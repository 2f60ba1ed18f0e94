package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/ritzau/santa-ring/pkg/model"
)

// PrintPlan prints a nicely formatted gift ring with colors
func PrintPlan(roster string, participants, edges int, plan *model.Plan) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Println("Santa Ring - Gift Assignments")
	bold.Println("=============================")
	fmt.Printf("Roster: %s\n", roster)
	fmt.Printf("Participants: %d (%d possible pairings)\n", participants, edges)
	fmt.Println()

	for _, a := range plan.Assignments {
		cyan.Printf("  %s", a.Giver)
		fmt.Printf(" -> ")
		green.Printf("%s\n", a.Receiver)
	}

	fmt.Println()
	green.Printf("Found a ring covering all %d participants", len(plan.Assignments))
	fmt.Printf(" (%d search steps)\n", plan.Steps)
}

// PrintFailure prints a scheduling failure. Invalid requests and infeasible
// constraint sets get distinct wording so users know whether to fix the
// roster file or relax exclusions.
func PrintFailure(roster string, err error, invalid bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	bold.Println("Santa Ring - Gift Assignments")
	bold.Println("=============================")
	fmt.Printf("Roster: %s\n", roster)
	fmt.Println()

	if invalid {
		red.Println("INVALID ROSTER:")
		yellow.Printf("  %v\n", err)
		fmt.Println("  Fix the roster file and re-run.")
		return
	}

	red.Println("NO VALID ASSIGNMENT:")
	yellow.Printf("  %v\n", err)
	fmt.Println("  Every participant needs someone to give to and receive from;")
	fmt.Println("  relax the exclusion lists and re-run.")
}
