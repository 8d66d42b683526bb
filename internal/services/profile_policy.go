package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/dailyglow/internal/models"
)

const maxDisplayNameLength = 80

func ValidateProfileUpdate(updates models.ProfileUpdate) error {
	if updates.DisplayName != nil && len([]rune(strings.TrimSpace(*updates.DisplayName))) > maxDisplayNameLength {
		return fmt.Errorf("%w: display name longer than %d characters", ErrValidation, maxDisplayNameLength)
	}
	if updates.Timezone != nil {
		name := strings.TrimSpace(*updates.Timezone)
		if name == "" {
			return fmt.Errorf("%w: timezone is required", ErrValidation)
		}
		if _, err := time.LoadLocation(name); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrValidation, name)
		}
	}
	if updates.PushPlatform != nil {
		switch strings.TrimSpace(*updates.PushPlatform) {
		case "", models.PushPlatformAndroid, models.PushPlatformIOS:
		default:
			return fmt.Errorf("%w: unsupported push platform %q", ErrValidation, *updates.PushPlatform)
		}
	}
	return nil
}
