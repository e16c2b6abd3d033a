package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type entityInfo struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Kind      uint8  `json:"kind"`
	OnDuty    bool   `json:"on_duty"`
	Premium   bool   `json:"premium"`
	Credits   uint64 `json:"credits"`
	Likes     int    `json:"likes"`
	Blocked   int    `json:"blocked"`
	LastNudge string `json:"last_nudge"`
	Connected bool   `json:"connected"`
	Position  latLon `json:"position"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List everyone on the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Entities []entityInfo `json:"entities"`
			}
			if err := apiGet(cmd.Context(), "/api/v1/entities", &resp); err != nil {
				return err
			}

			if len(resp.Entities) == 0 {
				fmt.Println("Roster is empty.")
				return nil
			}
			for _, e := range resp.Entities {
				displayEntity(e)
			}
			fmt.Printf("%d entities total\n", len(resp.Entities))
			return nil
		},
	}
}

func displayEntity(e entityInfo) {
	kind := "player"
	if e.Kind != 0 {
		kind = "wanderer"
	}
	duty := "off duty"
	if e.OnDuty {
		duty = "on duty"
	}
	fmt.Printf("#%d %s (%s, %s)\n", e.ID, e.Name, kind, duty)
	fmt.Printf("  at %.5f, %.5f\n", e.Position.Lat, e.Position.Lon)
	fmt.Printf("  likes %d, blocked %d, credits %d", e.Likes, e.Blocked, e.Credits)
	if e.Premium {
		fmt.Print(", premium")
	}
	if e.Connected {
		fmt.Print(", connected")
	}
	fmt.Println()
	if e.LastNudge != "" {
		fmt.Printf("  last nudged %s\n", e.LastNudge)
	}
	fmt.Println()
}
