package config

import "time"

const (
	// Karma
	ResolveKarmaReward = 50

	// Punishment
	PunishmentThreshold = 10

	// Archive
	ArchiveRetention       = 72 * time.Hour
	DefaultArchiveInterval = time.Hour

	// Seed flat created at startup when SEED_DEFAULT_FLAT=true
	DefaultFlatCode = "ABC123"
	DefaultFlatName = "Default Flat"

	// Registration
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// Punishments is the catalog a punishment is drawn from once a complaint
// collects PunishmentThreshold upvotes.
var Punishments = []string{
	"Didn't clean the dishes? You're making chai for everyone for a week.",
	"Blasted loud music at 2 AM? You owe everyone samosas.",
	"Forgot to pay the bills? You're treating everyone to pizza this weekend!",
	"Left a mess in the bathroom? You're cleaning the entire house this weekend.",
	"Didn't take out the trash? You're on garbage duty for a month.",
	"Hogged the common area? You're buying snacks for the next movie night.",
	"Made noise during exam time? You're providing study snacks for everyone.",
	"Didn't contribute to groceries? You're cooking dinner for everyone this week.",
}
