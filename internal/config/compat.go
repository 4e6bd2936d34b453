package config

import "strings"

// EmailClientCompatibility holds information about email client CSS support
type EmailClientCompatibility struct {
	SupportsMediaQueries     bool
	SupportsPseudoSelectors  map[string]bool // :hover, :focus, etc.
	SupportsFlexbox          bool
	SupportsBackgroundImages bool
	RequiresInlineStyles     bool
	MaxStylesheetSize        int // in bytes, 0 = no limit
}

// TargetClients lists the accepted values of inliner.target_client
var TargetClients = []string{"outlook", "gmail", "apple_mail", "outlook_online", "generic"}

// GetCompatibilityProfile returns compatibility info for major email clients
func GetCompatibilityProfile(client string) EmailClientCompatibility {
	switch strings.ToLower(client) {
	case "outlook", "outlook_desktop":
		return EmailClientCompatibility{
			SupportsMediaQueries:     false, // Desktop Outlook uses Word engine
			SupportsPseudoSelectors:  map[string]bool{":hover": false, ":focus": false},
			SupportsFlexbox:          false,
			SupportsBackgroundImages: false,
			RequiresInlineStyles:     true,
			MaxStylesheetSize:        65536,
		}
	case "gmail", "gmail_web":
		return EmailClientCompatibility{
			SupportsMediaQueries:     true,
			SupportsPseudoSelectors:  map[string]bool{":hover": true, ":focus": true},
			SupportsFlexbox:          true,
			SupportsBackgroundImages: true,
			RequiresInlineStyles:     false, // But still recommended
			MaxStylesheetSize:        0,
		}
	case "apple_mail", "mail_app":
		return EmailClientCompatibility{
			SupportsMediaQueries:     true,
			SupportsPseudoSelectors:  map[string]bool{":hover": true, ":focus": true},
			SupportsFlexbox:          true,
			SupportsBackgroundImages: true,
			RequiresInlineStyles:     false,
			MaxStylesheetSize:        0,
		}
	case "outlook_online", "outlook_web":
		return EmailClientCompatibility{
			SupportsMediaQueries:     true,
			SupportsPseudoSelectors:  map[string]bool{":hover": true, ":focus": false},
			SupportsFlexbox:          true,
			SupportsBackgroundImages: true,
			RequiresInlineStyles:     true,
			MaxStylesheetSize:        65536,
		}
	default:
		// Conservative defaults for unknown clients
		return EmailClientCompatibility{
			SupportsMediaQueries:     false,
			SupportsPseudoSelectors:  map[string]bool{},
			SupportsFlexbox:          false,
			SupportsBackgroundImages: false,
			RequiresInlineStyles:     true,
			MaxStylesheetSize:        32768,
		}
	}
}
