package permissions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownRole is returned when a role string is not one of owner, admin, member
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownPermission is returned when a permission is outside the vocabulary
	ErrUnknownPermission = errors.New("unknown permission")

	// ErrUnknownMode is returned for an unrecognized evaluation mode
	ErrUnknownMode = errors.New("unknown mode")
)

// Role represents a member's organization-level role
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Roles returns every role, most privileged first
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleMember}
}

// IsPowerUser reports whether the role carries an implicit all-permissions grant
func (r Role) IsPowerUser() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ParseRole converts a stored role string into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleOwner, RoleAdmin, RoleMember:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Permission names one allowed action inside an organization
type Permission string

// Administrator grants every permission
const Administrator Permission = "ADMINISTRATOR"

const (
	ViewCitizen   Permission = "VIEW_CITIZEN"
	CreateCitizen Permission = "CREATE_CITIZEN"
	EditCitizen   Permission = "EDIT_CITIZEN"
	DeleteCitizen Permission = "DELETE_CITIZEN"

	ViewVehicle   Permission = "VIEW_VEHICLE"
	CreateVehicle Permission = "CREATE_VEHICLE"
	EditVehicle   Permission = "EDIT_VEHICLE"
	DeleteVehicle Permission = "DELETE_VEHICLE"

	ViewFine   Permission = "VIEW_FINE"
	CreateFine Permission = "CREATE_FINE"
	EditFine   Permission = "EDIT_FINE"
	DeleteFine Permission = "DELETE_FINE"

	ViewJudicialCase   Permission = "VIEW_JUDICIAL_CASE"
	CreateJudicialCase Permission = "CREATE_JUDICIAL_CASE"
	EditJudicialCase   Permission = "EDIT_JUDICIAL_CASE"
	DeleteJudicialCase Permission = "DELETE_JUDICIAL_CASE"

	ViewWarrant   Permission = "VIEW_WARRANT"
	CreateWarrant Permission = "CREATE_WARRANT"
	EditWarrant   Permission = "EDIT_WARRANT"
	DeleteWarrant Permission = "DELETE_WARRANT"

	ViewMedicalRecord   Permission = "VIEW_MEDICAL_RECORD"
	CreateMedicalRecord Permission = "CREATE_MEDICAL_RECORD"
	EditMedicalRecord   Permission = "EDIT_MEDICAL_RECORD"
	DeleteMedicalRecord Permission = "DELETE_MEDICAL_RECORD"

	ViewActiveOfficers   Permission = "VIEW_ACTIVE_OFFICERS"
	ManageActiveOfficers Permission = "MANAGE_ACTIVE_OFFICERS"

	ViewForm   Permission = "VIEW_FORM"
	CreateForm Permission = "CREATE_FORM"
	EditForm   Permission = "EDIT_FORM"
	DeleteForm Permission = "DELETE_FORM"
	SubmitForm Permission = "SUBMIT_FORM"
)

// vocabulary is the closed set of grantable permissions, in display order
var vocabulary = []Permission{
	ViewCitizen, CreateCitizen, EditCitizen, DeleteCitizen,
	ViewVehicle, CreateVehicle, EditVehicle, DeleteVehicle,
	ViewFine, CreateFine, EditFine, DeleteFine,
	ViewJudicialCase, CreateJudicialCase, EditJudicialCase, DeleteJudicialCase,
	ViewWarrant, CreateWarrant, EditWarrant, DeleteWarrant,
	ViewMedicalRecord, CreateMedicalRecord, EditMedicalRecord, DeleteMedicalRecord,
	ViewActiveOfficers, ManageActiveOfficers,
	ViewForm, CreateForm, EditForm, DeleteForm, SubmitForm,
	Administrator,
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(vocabulary))
	for _, p := range vocabulary {
		m[p] = struct{}{}
	}
	return m
}()

// All returns every permission in the vocabulary, including Administrator
func All() []Permission {
	return slices.Clone(vocabulary)
}

// Known reports whether p is part of the vocabulary
func Known(p Permission) bool {
	_, ok := known[p]
	return ok
}

// ParsePermission validates a permission string against the vocabulary
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	if !Known(p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// Mode controls how a list of required permissions is combined
type Mode string

const (
	ModeAnd Mode = "AND"
	ModeOr  Mode = "OR"
	// ModeBulk asks the check endpoint for one result per permission
	ModeBulk Mode = "BULK"
)

// ParseMode parses a mode, defaulting to OR when empty
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return ModeOr, nil
	case ModeAnd, ModeOr, ModeBulk:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
