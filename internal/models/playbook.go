package models

import "time"

// Playbook is the synthesized narrative for a sub-channel. There is at most one per sub-channel and every
// regeneration bumps Version by one.
type Playbook struct {
	ID         string    `json:"id"`
	SubChannel string    `json:"subChannel"`
	Version    int       `json:"version"`
	ContentMD  string    `json:"contentMd"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
