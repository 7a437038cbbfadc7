package model

// Contact is one recipient row. ID is unique within a batch.
type Contact struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
}
