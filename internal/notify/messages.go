package notify

import "fmt"

// NudgeMessage is the one-way wake-up sent to an off-duty entity.
const NudgeMessage = "Psst... someone is in your vicinity! Clock in to find them?"

// PulseMessage composes the full-pulse alert. The compass label points the
// receiver toward their match without revealing exact coordinates.
func PulseMessage(compass string) string {
	return fmt.Sprintf("Your match is near! Look %s for the lights!", compass)
}

// SolidMessage is shown when the pair is inside the near-field threshold.
const SolidMessage = "SOLID LIGHTS & VIBRATION: face to face mode!"
