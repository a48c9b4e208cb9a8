package services

import "askboard/internal/models"

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID     string
	Role   string
	Banned bool
}

// ActorFromUser builds the actor for a loaded user.
func ActorFromUser(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role, Banned: u.IsBanned}
}

func (a Actor) Authenticated() bool { return a.ID != "" }

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionAccept
	ActionVote
	ActionModerate
)

// Resource is the thing an action targets. OwnerID is empty for actions that
// create something new.
type Resource struct {
	Kind    string
	OwnerID string
}

// CanAccess is the single authorization rule set:
//
//	read      anyone
//	create    any signed-in, non-banned user
//	vote      any signed-in, non-banned user
//	update    the owner
//	accept    the owner of the question
//	delete    the owner or an admin
//	moderate  an admin
//
// Banned users may only read.
func CanAccess(actor Actor, res Resource, action Action) bool {
	if action == ActionRead {
		return true
	}
	if !actor.Authenticated() || actor.Banned {
		return false
	}

	isOwner := res.OwnerID != "" && res.OwnerID == actor.ID

	switch action {
	case ActionCreate, ActionVote:
		return true
	case ActionUpdate, ActionAccept:
		return isOwner
	case ActionDelete:
		return isOwner || actor.IsAdmin()
	case ActionModerate:
		return actor.IsAdmin()
	}
	return false
}

// authorize turns a CanAccess refusal into an error of the right kind.
func authorize(op string, actor Actor, res Resource, action Action) error {
	if CanAccess(actor, res, action) {
		return nil
	}
	if !actor.Authenticated() {
		return fail(op, ErrUnauthenticated, "login required")
	}
	if actor.Banned {
		return fail(op, ErrForbidden, "account is banned")
	}
	return fail(op, ErrForbidden, "")
}

const (
	resourceQuestion = "question"
	resourceReply    = "reply"
	resourceVote     = "vote"
	resourceReport   = "report"
	resourceUser     = "user"
)
