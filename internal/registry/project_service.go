package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jujutime/juju/internal/models"
)

// ProjectManager resolves project identity for the session store. The
// repository receives one by injection; it never reaches for a global.
type ProjectManager interface {
	// LookupProjectByName returns the project with the given name, or
	// (nil, nil) when no such project exists.
	LookupProjectByName(name string) (*models.Project, error)
	// CreateProject registers a new project under the given name.
	CreateProject(name string) (*models.Project, error)
	// ProjectExists reports whether a project with the given ID exists.
	ProjectExists(id string) (bool, error)
	// PhaseBelongsToProject reports whether the phase exists and is owned
	// by the given project.
	PhaseBelongsToProject(phaseID, projectID string) (bool, error)
}

// ActivityTypeManager resolves activity type names for display only; the
// storage engine does not depend on it for correctness.
type ActivityTypeManager interface {
	// DisplayName returns the activity type name, or "Uncategorized" for
	// nil or unknown IDs.
	DisplayName(id *string) string
}

// Service implements both manager interfaces over the registry database.
type Service struct {
	db *gorm.DB
}

// NewService creates a registry service over an open database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LookupProjectByName finds a project by exact name, case-insensitive.
func (s *Service) LookupProjectByName(name string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup project %q: %w", name, err)
	}
	return &project, nil
}

// CreateProject registers a new project with a fresh ID.
func (s *Service) CreateProject(name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name must not be empty")
	}
	project := models.Project{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project %q: %w", name, err)
	}
	return &project, nil
}

// ProjectExists checks a project reference by ID.
func (s *Service) ProjectExists(id string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check project %s: %w", id, err)
	}
	return count > 0, nil
}

// PhaseBelongsToProject checks phase ownership for update validation.
func (s *Service) PhaseBelongsToProject(phaseID, projectID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProjectPhase{}).
		Where("id = ? AND project_id = ?", phaseID, projectID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check phase %s: %w", phaseID, err)
	}
	return count > 0, nil
}

// DisplayName resolves an activity type name with an "Uncategorized" fallback.
func (s *Service) DisplayName(id *string) string {
	if id == nil {
		return "Uncategorized"
	}
	var at models.ActivityType
	if err := s.db.First(&at, "id = ?", *id).Error; err != nil {
		return "Uncategorized"
	}
	return at.Name
}

// MemoryRegistry is an in-process ProjectManager for environments without the
// registry database (tests, dry runs). It preserves the single-instance
// cache semantics without any global state.
type MemoryRegistry struct {
	mu       sync.Mutex
	byName   map[string]*models.Project
	phases   map[string]string // phase id -> project id
	typeName map[string]string
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byName:   make(map[string]*models.Project),
		phases:   make(map[string]string),
		typeName: make(map[string]string),
	}
}

func (m *MemoryRegistry) LookupProjectByName(name string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *MemoryRegistry) CreateProject(name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if p, ok := m.byName[key]; ok {
		return p, nil
	}
	p := &models.Project{ID: uuid.NewString(), Name: name}
	m.byName[key] = p
	return p, nil
}

func (m *MemoryRegistry) ProjectExists(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byName {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// AddPhase registers a phase under a project.
func (m *MemoryRegistry) AddPhase(phaseID, projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases[phaseID] = projectID
}

func (m *MemoryRegistry) PhaseBelongsToProject(phaseID, projectID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.phases[phaseID]
	return ok && owner == projectID, nil
}

// AddActivityType registers an activity type name.
func (m *MemoryRegistry) AddActivityType(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typeName[id] = name
}

func (m *MemoryRegistry) DisplayName(id *string) string {
	if id == nil {
		return "Uncategorized"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.typeName[*id]; ok {
		return name
	}
	return "Uncategorized"
}
