package model

// Compiler is read-through reference data owned by the remote judge.
type Compiler struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
