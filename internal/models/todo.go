package models

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// CreateTodoRequest is the JSON body for POST /api/todos.
type CreateTodoRequest struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed"`
}

// TodoPatch is the JSON body for PUT /api/todos/{id}. Nil fields are left
// unchanged.
type TodoPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}

// Apply copies the present fields of p onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
