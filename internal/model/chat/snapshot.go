package chat

// Snapshot is a point-in-time copy of the widget session state. Message
// slices are always copies; mutating a snapshot never touches the session.
type Snapshot struct {
	Messages        []Message `json:"messages"`
	Input           string    `json:"input"`
	IsLoading       bool      `json:"isLoading"`
	ChatOpen        bool      `json:"chatOpen"`
	DarkMode        bool      `json:"darkMode"`
	MenuOpen        bool      `json:"menuOpen"`
	ShowEmojiPicker bool      `json:"showEmojiPicker"`
}
