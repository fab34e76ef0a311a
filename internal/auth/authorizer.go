// Package auth answers allow/deny for caller identities and action tags.
// Role assignments live in a YAML file so operators can grant access
// without a redeploy.
package auth

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"workshop-booking/pkg/logging"
)

// Action tags every protected operation. Use cases check exactly one tag
// before opening a unit of work.
type Action string

const (
	ActionCreateWorkshop     Action = "create_workshop"
	ActionEditWorkshop       Action = "edit_workshop"
	ActionDeleteWorkshop     Action = "delete_workshop"
	ActionUpdateAvailability Action = "update_availability"
	ActionViewAllBookings    Action = "view_all_bookings"
	ActionCancelAnyBooking   Action = "cancel_any_booking"
	ActionLinkBookings       Action = "link_bookings"
	ActionRegisterGuardian   Action = "register_guardian"
)

// Caller is the resolved identity of whoever invokes a use case. Key is
// whatever the entry point authenticated (API key, session subject);
// GuardianID is set when the caller is a known guardian, which lets
// CancelBooking allow guardians to cancel their own bookings without the
// cancel_any_booking grant.
type Caller struct {
	Key        string
	GuardianID *int64
}

// Authorizer decides whether a caller may perform an action.
type Authorizer interface {
	Allow(caller Caller, action Action) bool
}

// rolePermissions maps a role name to its granted actions. The admin role
// implicitly holds every action.
var rolePermissions = map[string][]Action{
	"staff": {
		ActionViewAllBookings,
		ActionRegisterGuardian,
		ActionLinkBookings,
	},
	"coordinator": {
		ActionCreateWorkshop,
		ActionEditWorkshop,
		ActionUpdateAvailability,
		ActionViewAllBookings,
		ActionRegisterGuardian,
		ActionLinkBookings,
	},
}

// FileAuthorizer resolves caller keys to roles from a YAML file:
//
//	alice-api-key: admin
//	front-desk: staff
//
// It attempts to load roles.yaml from ROLES_YAML_PATH or the working
// directory. A missing file denies every protected action until the file
// appears and Reload is called.
type FileAuthorizer struct {
	mu        sync.RWMutex
	keyToRole map[string]string
	loaded    bool
	yamlPath  string
	log       *logging.Logger
}

var _ Authorizer = (*FileAuthorizer)(nil)

func NewFileAuthorizer(path string, log *logging.Logger) *FileAuthorizer {
	a := &FileAuthorizer{
		keyToRole: make(map[string]string),
		log:       log.WithComponent("auth"),
	}

	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			a.log.Warn("cannot determine working directory, roles file disabled")
			return a
		}
		path = filepath.Join(cwd, "roles.yaml")
	}

	if err := a.loadFile(path); err != nil {
		a.log.Warn("roles file not loaded, all protected actions will be denied",
			logging.String("path", path))
	} else {
		a.yamlPath = path
		a.log.Info("loaded role assignments", logging.String("path", path), logging.Int("entries", a.entryCount()))
	}
	return a
}

func (a *FileAuthorizer) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var mapping map[string]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.keyToRole = mapping
	a.loaded = true
	a.yamlPath = path
	return nil
}

// Reload re-reads the roles file from disk.
func (a *FileAuthorizer) Reload() error {
	a.mu.RLock()
	path := a.yamlPath
	a.mu.RUnlock()
	if path == "" {
		return nil
	}
	return a.loadFile(path)
}

// IsLoaded reports whether a roles file was successfully read.
func (a *FileAuthorizer) IsLoaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

func (a *FileAuthorizer) entryCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.keyToRole)
}

func (a *FileAuthorizer) Allow(caller Caller, action Action) bool {
	a.mu.RLock()
	role, ok := a.keyToRole[caller.Key]
	a.mu.RUnlock()
	if !ok {
		return false
	}
	return roleAllows(role, action)
}

func roleAllows(role string, action Action) bool {
	if role == "admin" {
		return true
	}
	for _, granted := range rolePermissions[role] {
		if granted == action {
			return true
		}
	}
	return false
}

// Static is a fixed-map Authorizer for tests and embedded setups.
type Static struct {
	Roles map[string]string // caller key -> role
}

var _ Authorizer = Static{}

func (s Static) Allow(caller Caller, action Action) bool {
	role, ok := s.Roles[caller.Key]
	if !ok {
		return false
	}
	return roleAllows(role, action)
}

// AllowAll grants everything; convenient in tests that are not about
// authorization.
type AllowAll struct{}

var _ Authorizer = AllowAll{}

func (AllowAll) Allow(Caller, Action) bool { return true }
