package domain

// ModuleStatus is the lifecycle state of a training module.
type ModuleStatus string

const (
	ModuleLocked     ModuleStatus = "locked"
	ModuleInProgress ModuleStatus = "in_progress"
	ModuleValidated  ModuleStatus = "validated"
)

// ContentKind describes the course material attached to a module.
type ContentKind string

const (
	ContentVideo ContentKind = "video"
	ContentPPT   ContentKind = "ppt"
	ContentMixed ContentKind = "mixed"
)

// TrainingModule is one course in the training catalog.
type TrainingModule struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Progress    int          `json:"progress"`
	Status      ModuleStatus `json:"status"`
	ContentKind ContentKind  `json:"content_kind"`
}

// IsLocked returns true if the module cannot be started yet.
func (m *TrainingModule) IsLocked() bool {
	return m.Status == ModuleLocked
}

// Validate marks the module as fully completed.
func (m *TrainingModule) Validate() {
	m.Progress = 100
	m.Status = ModuleValidated
}

// DefaultCatalog is the module list used to seed an empty catalog.
func DefaultCatalog() []TrainingModule {
	return []TrainingModule{
		{ID: 1, Title: "Accounting Fundamentals", Category: "Accounting", Progress: 100, Status: ModuleValidated, ContentKind: ContentVideo},
		{ID: 2, Title: "Internal Audit: Level 1", Category: "Audit", Progress: 45, Status: ModuleInProgress, ContentKind: ContentPPT},
		{ID: 3, Title: "Tontine Management", Category: "Tontine", Progress: 0, Status: ModuleLocked, ContentKind: ContentMixed},
		{ID: 4, Title: "Credit Risk Analysis", Category: "Credit", Progress: 10, Status: ModuleInProgress, ContentKind: ContentVideo},
	}
}
