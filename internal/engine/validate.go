package engine

import (
	"strings"
	"time"

	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/slots"
)

// ValidateState rejects state that is missing records or whose inventories
// disagree with the power profile.
func ValidateState(st models.UserState) error {
	if st.Power.Techniques == nil || st.Power.AccountCreatedAt.IsZero() {
		return errors.NewCorruptStateError("power profile", "missing techniques or account creation time")
	}
	if st.Power.TotalLogsAllSections < 0 {
		return errors.NewCorruptStateError("power profile", "negative log counter")
	}
	for _, s := range models.Sections {
		ss, ok := st.Sections[s]
		if !ok {
			return errors.NewCorruptStateError("section "+string(s), "record missing")
		}
		if ss.Progress.TotalLogs < 0 || ss.Progress.StreakDays < 0 {
			return errors.NewCorruptStateError("section "+string(s), "negative progression counter")
		}
		if ss.Inventory.Section != s {
			return errors.NewCorruptStateError("section "+string(s), "inventory belongs to "+string(ss.Inventory.Section))
		}
		if err := slots.Validate(ss.Inventory, st.Power); err != nil {
			return err
		}
	}
	for id, t := range st.Power.Techniques {
		ss, ok := st.Sections[t.Section]
		if !ok || ss.Inventory.Find(id) < 0 {
			return errors.NewCorruptStateError("inventory", "technique "+id+" has no slot")
		}
	}
	return nil
}

func validateCall(st models.UserState, section models.Section, now time.Time) error {
	if !section.IsValid() {
		return errors.NewInvalidInputError("section", string(section))
	}
	if now.IsZero() {
		return errors.NewInvalidInputError("timestamp", "zero time")
	}
	if err := ValidateState(st); err != nil {
		return err
	}
	if now.Before(st.Power.AccountCreatedAt) {
		return errors.NewInvalidInputError("timestamp", "before account creation")
	}
	return nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidInputError("technique id", "cannot be empty")
	}
	return nil
}
