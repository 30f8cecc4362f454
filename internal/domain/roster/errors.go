package roster

import "errors"

var (
	ErrImportFailed = errors.New("import failed, nothing was saved")
	ErrUnknownTeam  = errors.New("client team has no employee in this import")
	ErrTeamNotFound = errors.New("team not found")
	ErrInvalidRange = errors.New("invalid schedule range")
)
