package models

import "time"

const (
	// DefaultMaxAccounts is the account target used when the hunt request does not specify one.
	DefaultMaxAccounts = 10
	// DefaultStage is the pipeline stage of accounts the model did not classify.
	DefaultStage = "Prospect"
)

// HuntParams are the validated inputs of a hunt.
type HuntParams struct {
	SubChannel  string
	Markets     []string
	FocusBrands []string
	MaxAccounts int
}

// Hunt is one run of the 10-step methodology against a sub-channel, its markets and focus brands.
//
// Accounts are owned by the hunt and are deleted with it. HuntResult is computed once at creation and is not
// recomputed if Accounts change later.
type Hunt struct {
	ID          string     `json:"id"`
	SubChannel  string     `json:"subChannel"`
	Markets     []string   `json:"markets"`
	FocusBrands []string   `json:"focusBrands"`
	MaxAccounts int        `json:"maxAccounts"`
	Accounts    []Account  `json:"accounts"`
	HuntResult  HuntResult `json:"huntResult"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// HuntResult summarises a hunt at creation time.
type HuntResult struct {
	Summary       string `json:"summary"`
	TotalAccounts int    `json:"totalAccounts"`
}

// Account is a candidate business entity discovered and scored within a hunt.
type Account struct {
	Name        string   `json:"name"`
	Markets     []string `json:"markets"`
	Segment     string   `json:"segment"`
	Score       int      `json:"score"`
	CurrentStep int      `json:"currentStep"`
	Rationale   string   `json:"rationale"`
	Ideas       []Idea   `json:"ideas"`
	Stage       string   `json:"stage"`
	Steps       []Step   `json:"steps"`
}

// Idea is a platform idea pitched to an account.
type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Step is the account's note for one step of the methodology.
type Step struct {
	Step int    `json:"step"`
	Name string `json:"name"`
	Note string `json:"note"`
}
