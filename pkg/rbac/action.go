package rbac

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// ErrForbidden is returned when a member may not perform an action
var ErrForbidden = errors.New("forbidden")

// Action is a mutating operation together with the permissions it requires
type Action struct {
	Name              string
	CustomPermissions []permissions.Permission
	Mode              permissions.Mode
}

func action(name string, perms ...permissions.Permission) Action {
	return Action{Name: name, CustomPermissions: perms, Mode: permissions.ModeOr}
}

// Actions is the catalogue of CAD mutations
var Actions = map[string]Action{
	"createCitizen": action("createCitizen", permissions.CreateCitizen),
	"editCitizen":   action("editCitizen", permissions.EditCitizen),
	"deleteCitizen": action("deleteCitizen", permissions.DeleteCitizen),

	"createVehicle": action("createVehicle", permissions.CreateVehicle),
	"editVehicle":   action("editVehicle", permissions.EditVehicle),
	"deleteVehicle": action("deleteVehicle", permissions.DeleteVehicle),

	"createFine": action("createFine", permissions.CreateFine),
	"editFine":   action("editFine", permissions.EditFine),
	"deleteFine": action("deleteFine", permissions.DeleteFine),

	"createJudicialCase": action("createJudicialCase", permissions.CreateJudicialCase),
	"editJudicialCase":   action("editJudicialCase", permissions.EditJudicialCase),
	"deleteJudicialCase": action("deleteJudicialCase", permissions.DeleteJudicialCase),

	"createWarrant": action("createWarrant", permissions.CreateWarrant),
	"editWarrant":   action("editWarrant", permissions.EditWarrant),
	"deleteWarrant": action("deleteWarrant", permissions.DeleteWarrant),

	"createMedicalRecord": action("createMedicalRecord", permissions.CreateMedicalRecord),
	"editMedicalRecord":   action("editMedicalRecord", permissions.EditMedicalRecord),
	"deleteMedicalRecord": action("deleteMedicalRecord", permissions.DeleteMedicalRecord),

	"createForm": action("createForm", permissions.CreateForm),
	"editForm":   action("editForm", permissions.EditForm),
	"deleteForm": action("deleteForm", permissions.DeleteForm),
	"submitForm": action("submitForm", permissions.SubmitForm),

	"setOfficerStatus": action("setOfficerStatus", permissions.ManageActiveOfficers),
	"removeActiveUnit": action("removeActiveUnit", permissions.ManageActiveOfficers),
}

// ActionGuard re-checks permissions on the server before a mutation runs
type ActionGuard struct {
	checker Checker
	metrics *observability.Metrics
	audit   audit.Logger
}

// NewActionGuard creates an action guard. metrics may be nil.
func NewActionGuard(checker Checker, metrics *observability.Metrics) *ActionGuard {
	return &ActionGuard{
		checker: checker,
		metrics: metrics,
		audit:   audit.Nop{},
	}
}

// WithAudit records every refused action to logger
func (g *ActionGuard) WithAudit(logger audit.Logger) *ActionGuard {
	if logger != nil {
		g.audit = logger
	}
	return g
}

// Authorize returns nil when the user may perform the action in the organization and
// an error wrapping ErrForbidden when not. Non-members are always forbidden.
func (g *ActionGuard) Authorize(ctx context.Context, userID, orgID int64, a Action) error {
	eff, err := g.checker.Resolve(ctx, userID, orgID)
	if err != nil {
		return fmt.Errorf("failed to authorize %s: %w", a.Name, err)
	}

	state := PermissionCheckPassed
	switch {
	case eff.IsPowerUser:
		state = PowerUserBypass
	case eff.Role == "":
		state = PermissionCheckFailed
	case !permissions.Satisfies(a.CustomPermissions, a.Mode, eff):
		state = PermissionCheckFailed
	}
	g.metrics.RecordAccessDecision("action", string(state))

	if !state.Allowed() {
		return fmt.Errorf("%w: %s requires %v", ErrForbidden, a.Name, a.CustomPermissions)
	}
	return nil
}

// Require creates middleware that authorizes the action before the handler runs
func (g *ActionGuard) Require(a Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := middleware.GetAuthContext(r)
			if authCtx == nil || authCtx.User == nil {
				httputil.WriteUnauthorized(w, "Authentication required")
				return
			}
			org := middleware.GetOrganization(r)
			if org == nil {
				httputil.WriteNotFoundError(w, "Organization not found")
				return
			}

			err := g.Authorize(r.Context(), authCtx.User.ID, org.ID, a)
			if errors.Is(err, ErrForbidden) {
				g.record(r, audit.EventTypeActionDenied, a.Name)
				httputil.WriteForbidden(w, "Insufficient permissions")
				return
			}
			if err != nil {
				observability.FromContext(r.Context()).WithError(err).Error("Permission check failed")
				g.record(r, audit.EventTypeCheckFailed, a.Name)
				httputil.WriteInternalError(w, errors.New("permission check failed"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *ActionGuard) record(r *http.Request, eventType audit.EventType, action string) {
	if err := g.audit.Log(r.Context(), audit.NewRequestEvent(r, eventType, "action", action)); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("Failed to record audit event")
	}
}

// RequireNamed is Require for an entry of Actions. It panics on an unknown name so
// routing mistakes surface at startup.
func (g *ActionGuard) RequireNamed(name string) func(http.Handler) http.Handler {
	a, ok := Actions[name]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown action %q", name))
	}
	return g.Require(a)
}
