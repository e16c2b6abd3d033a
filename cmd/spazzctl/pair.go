package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type pairOutcome struct {
	Kind       string  `json:"kind"`
	Reason     string  `json:"reason"`
	DistanceKm float64 `json:"distance_km"`
	BearingDeg float64 `json:"bearing_deg"`
	Compass    string  `json:"compass"`
	Intensity  int     `json:"intensity_pct"`
	Profile    struct {
		Mode     string `json:"mode"`
		PeriodMs int    `json:"period_ms"`
	} `json:"profile"`
	NudgeTarget uint64 `json:"nudge_target"`
	Teaser      string `json:"teaser"`
}

func newPairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair <sender-id> <receiver-id>",
		Short: "Dry-run the eligibility gate for a pair (no dispatch)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args); err != nil {
				return err
			}
			var out pairOutcome
			path := fmt.Sprintf("/api/v1/pair/%s/%s", args[0], args[1])
			if err := apiGet(cmd.Context(), path, &out); err != nil {
				return err
			}
			displayOutcome(out)
			return nil
		},
	}
}

func displayOutcome(out pairOutcome) {
	if out.Teaser != "" {
		fmt.Printf("%s: %s\n", out.Kind, out.Teaser)
		return
	}

	fmt.Printf("outcome: %s\n", out.Kind)
	if out.Reason != "" {
		fmt.Printf("  reason: %s\n", out.Reason)
	}
	if out.DistanceKm > 0 || out.Compass != "" {
		fmt.Printf("  distance: %.4f km bearing %.1f° (%s)\n", out.DistanceKm, out.BearingDeg, out.Compass)
	}
	if out.Kind == "full-pulse" {
		if out.Intensity > 100 {
			fmt.Println("  intensity: solid (face to face)")
		} else {
			fmt.Printf("  intensity: %d%%\n", out.Intensity)
		}
		fmt.Printf("  haptic: %s", out.Profile.Mode)
		if out.Profile.PeriodMs > 0 {
			fmt.Printf(" every %dms", out.Profile.PeriodMs)
		}
		fmt.Println()
	}
	if out.NudgeTarget != 0 {
		fmt.Printf("  nudge candidate: entity %d\n", out.NudgeTarget)
	}
}

func checkIDs(args []string) error {
	for _, a := range args {
		if _, err := strconv.ParseUint(a, 10, 64); err != nil {
			return fmt.Errorf("bad entity id %q", a)
		}
	}
	return nil
}
