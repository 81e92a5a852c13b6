package domain

import "errors"

var (
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteExists   = errors.New("a pending invitation for this email already exists")
	ErrAlreadyMember  = errors.New("a member with this email already exists in the organization")
	ErrInviteInvalid  = errors.New("invalid invitation token")
	ErrInviteExpired  = errors.New("invitation has expired")
	ErrInviteAccepted = errors.New("invitation has already been accepted")
)
