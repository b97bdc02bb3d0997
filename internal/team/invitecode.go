package team

// InviteCodeLength is the number of characters in a generated invite code.
const InviteCodeLength = 6

// NewInviteCode returns a random upper-case base36 invite code.
func NewInviteCode() (string, error) {
	return randomBase36(InviteCodeLength)
}
