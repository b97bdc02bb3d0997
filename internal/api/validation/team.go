package validation

// Team actions accepted by POST /team-actions.
const (
	TeamActionCreate = "create"
	TeamActionJoin   = "join"
)

const (
	maxTeamNameLength   = 100
	maxTeamSlugLength   = 100
	maxInviteCodeLength = 32
)

// TeamActionRequest mirrors the fields needed for team action validation.
type TeamActionRequest struct {
	Action     string
	Name       string
	Slug       string
	InviteCode string
}

// ValidateTeamActionRequest checks the shape of a team action. Blank names
// and codes are left to the membership workflow, which rejects them after
// checking the caller's affiliation.
func ValidateTeamActionRequest(req TeamActionRequest) []FieldError {
	var errs []FieldError

	switch req.Action {
	case TeamActionCreate:
		if tooLong(req.Name, maxTeamNameLength) {
			errs = append(errs, FieldError{Field: "payload.name", Message: "name must be at most 100 characters"})
		}
		if tooLong(req.Slug, maxTeamSlugLength) {
			errs = append(errs, FieldError{Field: "payload.slug", Message: "slug must be at most 100 characters"})
		}
	case TeamActionJoin:
		if tooLong(req.InviteCode, maxInviteCodeLength) {
			errs = append(errs, FieldError{Field: "payload.inviteCode", Message: "inviteCode must be at most 32 characters"})
		}
	case "":
		errs = append(errs, FieldError{Field: "action", Message: "action is required"})
	default:
		errs = append(errs, FieldError{Field: "action", Message: "action must be \"create\" or \"join\""})
	}

	return errs
}
