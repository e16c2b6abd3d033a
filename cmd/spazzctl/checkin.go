package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <entity-id> <target-id>",
		Short: "Run the full evaluate, dispatch and commit sequence for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args); err != nil {
				return err
			}
			target, _ := strconv.ParseUint(args[1], 10, 64)

			var report struct {
				Outcome          pairOutcome `json:"outcome"`
				SenderNotified   bool        `json:"sender_notified"`
				ReceiverNotified bool        `json:"receiver_notified"`
				NudgeDelivered   bool        `json:"nudge_delivered"`
				NudgeSuppressed  bool        `json:"nudge_suppressed"`
			}
			path := fmt.Sprintf("/api/v1/entity/%s/checkin", args[0])
			if err := apiPost(cmd.Context(), path, map[string]uint64{"target": target}, &report); err != nil {
				return err
			}

			displayOutcome(report.Outcome)
			switch {
			case report.SenderNotified || report.ReceiverNotified:
				fmt.Printf("  delivered: sender=%v receiver=%v\n", report.SenderNotified, report.ReceiverNotified)
			case report.NudgeDelivered:
				fmt.Println("  nudge delivered")
			case report.NudgeSuppressed:
				fmt.Println("  nudge suppressed (cooldown)")
			}
			return nil
		},
	}
}
