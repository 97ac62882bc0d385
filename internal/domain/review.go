package domain

// ContextEntry is a single display-ready line of a nomination's context.
type ContextEntry struct {
	Time     string `json:"time"`
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	HasImage bool   `json:"has_image"`
	InThread bool   `json:"in_thread,omitempty"`
	IsJoty   bool   `json:"is_joty,omitempty"`
}

// ReviewEntry is one surviving nomination with its full context, as persisted
// to the candidates file. IDs are dense, starting at 1.
type ReviewEntry struct {
	ID       int            `json:"id"`
	Time     string         `json:"joty_time"`
	Text     string         `json:"joty_text"`
	Sender   string         `json:"joty_sender"`
	ChatName string         `json:"chat_name"`
	IsThread bool           `json:"is_thread"`
	Context  []ContextEntry `json:"context"`
}
