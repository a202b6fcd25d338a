// Package policy decides who may do what.
//
// Decisions happen in two layers. The coarse layer asks whether an
// authority level may perform an action on a resource kind at all and is
// evaluated by casbin before a handler runs. The fine layer asks whether an
// actor may modify one particular review or comment and is evaluated by the
// service against the author stored in the database.
package policy

import "yamdb/internal/microservices/http-api/models"

// Level is an ordered authority level.
type Level int

const (
	LevelAnonymous Level = iota
	LevelUser
	LevelModerator
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelUser:
		return "user"
	case LevelModerator:
		return "moderator"
	case LevelAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Resolve maps a stored role and superuser flag to a level.
// A superuser is an admin regardless of role; unknown roles get user.
func Resolve(role string, isSuperuser bool) Level {
	if isSuperuser {
		return LevelAdmin
	}
	switch role {
	case models.RoleAdmin:
		return LevelAdmin
	case models.RoleModerator:
		return LevelModerator
	default:
		return LevelUser
	}
}

// Actor is the requester, resolved once per request.
type Actor struct {
	UserID   string
	Username string
	Level    Level
}

func Anonymous() Actor {
	return Actor{Level: LevelAnonymous}
}

// ActorFor builds the actor for a stored user.
func ActorFor(u *models.User) Actor {
	return Actor{
		UserID:   u.ID,
		Username: u.Username,
		Level:    Resolve(u.Role, u.IsSuperuser),
	}
}

func (a Actor) Authenticated() bool {
	return a.Level > LevelAnonymous && a.UserID != ""
}

// CanModify reports whether a may edit or delete an object written by
// authorID. authorID must come from storage, never from the request body.
func CanModify(a Actor, authorID string) bool {
	if !a.Authenticated() {
		return false
	}
	if a.Level >= LevelModerator {
		return true
	}
	return authorID != "" && a.UserID == authorID
}
