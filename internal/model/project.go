package model

// Project is a container that scopes a task board. The project list is
// fetched once per session; a project is immutable from the board's side.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is a team member who can be assigned to cards.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
