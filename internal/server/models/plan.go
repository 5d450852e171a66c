package models

// Plan is a named trading checklist. CreatedAt is in unix milliseconds.
type Plan struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
}

// Step is one checklist item of a plan. Steps are listed by ascending
// Order, ties broken by ID.
type Step struct {
	ID     string `json:"id"`
	PlanID string `json:"planId"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

// StepPatch carries the optional fields of a step update.
type StepPatch struct {
	Title *string
	Order *int
}
