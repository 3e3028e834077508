package domain

// Tab is a navigation shell destination.
type Tab string

const (
	TabChat     Tab = "chat"
	TabCEI      Tab = "cei"
	TabTraining Tab = "training"
	TabUpload   Tab = "upload"
	TabHistory  Tab = "history"
)

// ParseTab maps a tab name to a known tab. Unknown names fall back to the
// general chat.
func ParseTab(s string) Tab {
	switch t := Tab(s); t {
	case TabChat, TabCEI, TabTraining, TabUpload, TabHistory:
		return t
	}
	return TabChat
}
