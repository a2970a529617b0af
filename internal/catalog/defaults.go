package catalog

import "github.com/CosmoBean/simplysecure/internal/models"

// Default returns the built-in three-day challenge catalog. Keep IDs
// stable: progress records and external callers store them.
func Default() *Catalog {
	c, err := New(defaultTasks(), defaultAchievements())
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

func defaultTasks() []*models.SecurityTask {
	return []*models.SecurityTask{
		// Day 1 — foundations
		{
			ID:          "enable-filevault",
			Title:       "Enable FileVault Encryption",
			Description: "Turn on full-disk encryption so data on a lost or stolen machine stays unreadable.",
			DetailedInstructions: "Open System Settings > Privacy & Security > FileVault and click " +
				"Turn On. Store the recovery key somewhere other than the machine itself.",
			Category:             models.CategoryEncryption,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 10,
			XPReward:             50,
			VerificationCommand:  "fdesetup status",
			Day:                  1,
			Order:                1,
		},
		{
			ID:                   "enable-firewall",
			Title:                "Enable the Application Firewall",
			Description:          "Block unsolicited inbound connections to services running on this machine.",
			DetailedInstructions: "System Settings > Network > Firewall, toggle it on. Review the per-app allow list afterwards.",
			Category:             models.CategoryNetworking,
			Difficulty:           models.DifficultyEasy,
			EstimatedTimeMinutes: 5,
			XPReward:             30,
			VerificationCommand:  "/usr/libexec/ApplicationFirewall/socketfilterfw --getglobalstate",
			Day:                  1,
			Order:                2,
		},
		{
			ID:                   "configure-privacy-settings",
			Title:                "Configure Privacy Settings",
			Description:          "Review which apps can access camera, microphone, location and contacts, and revoke anything you do not recognize.",
			DetailedInstructions: "Walk through each category under System Settings > Privacy & Security and remove stale grants.",
			Category:             models.CategoryPrivacy,
			Difficulty:           models.DifficultyEasy,
			EstimatedTimeMinutes: 15,
			XPReward:             40,
			Day:                  1,
			Order:                3,
		},
		{
			ID:                   "enable-automatic-updates",
			Title:                "Enable Automatic Updates",
			Description:          "Keep the OS and built-in apps patched without relying on manual checks.",
			DetailedInstructions: "System Settings > General > Software Update > Automatic Updates: enable all options including security responses.",
			Category:             models.CategorySystemHardening,
			Difficulty:           models.DifficultyEasy,
			EstimatedTimeMinutes: 5,
			XPReward:             30,
			Day:                  1,
			Order:                4,
		},
		{
			ID:                   "strong-login-password",
			Title:                "Set a Strong Login Password",
			Description:          "Replace short or reused login passwords with a long unique passphrase.",
			DetailedInstructions: "System Settings > Touch ID & Password. Use four or more random words; do not reuse an online account password.",
			Category:             models.CategoryAuthentication,
			Difficulty:           models.DifficultyEasy,
			EstimatedTimeMinutes: 10,
			XPReward:             40,
			Day:                  1,
			Order:                5,
		},

		// Day 2 — hardening
		{
			ID:                   "enable-gatekeeper",
			Title:                "Enable Gatekeeper",
			Description:          "Restrict app launches to signed and notarized software.",
			DetailedInstructions: "System Settings > Privacy & Security > Security, set 'Allow applications from' to App Store and identified developers.",
			Category:             models.CategorySystemHardening,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 5,
			XPReward:             40,
			VerificationCommand:  "spctl --status",
			Day:                  2,
			Order:                1,
		},
		{
			ID:                   "verify-sip",
			Title:                "Verify System Integrity Protection",
			Description:          "Confirm SIP is active so system files cannot be modified, even by root.",
			DetailedInstructions: "Run the verification command in a terminal; the output should read 'enabled'. If disabled, re-enable it from Recovery.",
			Category:             models.CategorySystemHardening,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 10,
			XPReward:             50,
			VerificationCommand:  "csrutil status",
			Prerequisites:        []string{"enable-gatekeeper"},
			Day:                  2,
			Order:                2,
		},
		{
			ID:                   "audit-location-services",
			Title:                "Audit Location Services",
			Description:          "Reduce the set of apps allowed to track your location.",
			DetailedInstructions: "System Settings > Privacy & Security > Location Services. Prefer 'while using' and disable access for apps with no location feature.",
			Category:             models.CategoryPrivacy,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 10,
			XPReward:             40,
			Day:                  2,
			Order:                3,
		},
		{
			ID:                   "secure-dns",
			Title:                "Configure Encrypted DNS",
			Description:          "Stop your network provider from seeing every domain you resolve.",
			DetailedInstructions: "Install a DNS profile that uses DNS-over-HTTPS, or configure a trusted resolver in your router settings.",
			Category:             models.CategoryNetworking,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 15,
			XPReward:             50,
			Day:                  2,
			Order:                4,
		},
		{
			ID:                   "audit-camera-microphone",
			Title:                "Review Camera and Microphone Access",
			Description:          "Revoke camera and microphone grants from apps that do not strictly need them.",
			DetailedInstructions: "System Settings > Privacy & Security > Camera / Microphone. Remove anything you cannot explain.",
			Category:             models.CategoryPrivacy,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 10,
			XPReward:             40,
			Prerequisites:        []string{"configure-privacy-settings"},
			Day:                  2,
			Order:                5,
		},

		// Day 3 — mastery
		{
			ID:                   "password-manager",
			Title:                "Set Up a Password Manager",
			Description:          "Move every account to a unique generated password stored in a manager.",
			DetailedInstructions: "Pick a reputable manager, import existing logins, then rotate the weakest ones first.",
			Category:             models.CategoryAuthentication,
			Difficulty:           models.DifficultyHard,
			EstimatedTimeMinutes: 30,
			XPReward:             60,
			Prerequisites:        []string{"strong-login-password"},
			Day:                  3,
			Order:                1,
		},
		{
			ID:                   "enable-2fa",
			Title:                "Enable Two-Factor Authentication",
			Description:          "Protect your primary accounts with a second factor.",
			DetailedInstructions: "Start with your Apple ID and email account, then banking. Prefer app-based or hardware codes over SMS.",
			Category:             models.CategoryAuthentication,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 20,
			XPReward:             50,
			Prerequisites:        []string{"password-manager"},
			Day:                  3,
			Order:                2,
		},
		{
			ID:                   "harden-browser",
			Title:                "Harden Browser Privacy Settings",
			Description:          "Reduce tracking and fingerprinting in your daily browser.",
			DetailedInstructions: "Enable tracker blocking, disable third-party cookies, and audit installed extensions.",
			Category:             models.CategoryPrivacy,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 15,
			XPReward:             50,
			Day:                  3,
			Order:                3,
		},
		{
			ID:                   "audit-sharing-services",
			Title:                "Audit Network Sharing Services",
			Description:          "Turn off file, screen and remote-login sharing unless actively used.",
			DetailedInstructions: "System Settings > General > Sharing. Every enabled service is a listening network endpoint; disable the ones you do not use.",
			Category:             models.CategoryNetworking,
			Difficulty:           models.DifficultyMedium,
			EstimatedTimeMinutes: 10,
			XPReward:             50,
			Prerequisites:        []string{"enable-firewall"},
			Day:                  3,
			Order:                4,
		},
		{
			ID:                   "encrypted-backup",
			Title:                "Create an Encrypted Backup",
			Description:          "Back up your data to an encrypted destination so recovery does not trade security away.",
			DetailedInstructions: "Enable Time Machine with encryption, or create an encrypted disk image for critical documents. Verify you can restore.",
			Category:             models.CategoryEncryption,
			Difficulty:           models.DifficultyHard,
			EstimatedTimeMinutes: 25,
			XPReward:             60,
			Prerequisites:        []string{"enable-filevault"},
			Day:                  3,
			Order:                5,
		},
	}
}

func defaultAchievements() []*models.SecurityAchievement {
	return []*models.SecurityAchievement{
		{
			ID:          "security-novice",
			Title:       "Security Novice",
			Description: "Complete your first security task.",
			Requirement: models.RequireTotalCompleted,
			Threshold:   1,
			XPReward:    25,
		},
		{
			ID:          "foundation-builder",
			Title:       "Foundation Builder",
			Description: "Complete every task of day 1.",
			Requirement: models.RequireDayCompleted,
			Day:         1,
			XPReward:    50,
		},
		{
			ID:          "privacy-guardian",
			Title:       "Privacy Guardian",
			Description: "Complete three privacy tasks.",
			Requirement: models.RequireCategoryCompleted,
			Category:    models.CategoryPrivacy,
			Threshold:   3,
			XPReward:    75,
		},
		{
			ID:          "network-defender",
			Title:       "Network Defender",
			Description: "Complete two networking tasks.",
			Requirement: models.RequireCategoryCompleted,
			Category:    models.CategoryNetworking,
			Threshold:   2,
			XPReward:    50,
		},
		{
			ID:          "security-master",
			Title:       "Security Master",
			Description: "Complete all fifteen tasks.",
			Requirement: models.RequireTotalCompleted,
			Threshold:   15,
			XPReward:    150,
		},
	}
}
