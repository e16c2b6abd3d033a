package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st struct {
				Name         string  `json:"name"`
				Tick         uint64  `json:"tick"`
				Entities     int     `json:"entities"`
				Wanderers    int     `json:"wanderers"`
				Floor        int     `json:"floor"`
				Uptime       string  `json:"uptime"`
				PulseRangeKm float64 `json:"pulse_range_km"`
				VicinityKm   float64 `json:"vicinity_km"`
			}
			if err := apiGet(cmd.Context(), "/api/v1/status", &st); err != nil {
				return err
			}

			fmt.Printf("%s engine\n", st.Name)
			fmt.Printf("  started:     %s\n", st.Uptime)
			fmt.Printf("  tick:        %d\n", st.Tick)
			fmt.Printf("  entities:    %d (%d wanderers, floor %d)\n", st.Entities, st.Wanderers, st.Floor)
			fmt.Printf("  pulse range: %.3f km\n", st.PulseRangeKm)
			fmt.Printf("  vicinity:    %.3f km\n", st.VicinityKm)
			return nil
		},
	}
}
