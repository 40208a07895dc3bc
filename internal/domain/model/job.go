package model

// Job is an opening with free-text requirements.
type Job struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description"`
	Requirements []string `json:"requirements" yaml:"requirements"`
	Location     string   `json:"location,omitempty" yaml:"location"`
	Details      string   `json:"details,omitempty" yaml:"details"`
}
