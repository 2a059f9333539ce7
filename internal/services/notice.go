package services

import (
	"errors"

	"package-organizer/internal/domain"
	"package-organizer/internal/state"
)

type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice kinds.
const (
	KindValidation      = "validation"
	KindLoad            = "load"
	KindSave            = "save"
	KindSaveQuota       = "save_quota"
	KindImportMalformed = "import_malformed"
	KindImportParse     = "import_parse"
	KindImported        = "imported"
	KindNothingToUndo   = "nothing_to_undo"
	KindUndone          = "undone"
	KindRouteComplete   = "route_complete"
)

// Notice is a non-blocking message for the driver.
type Notice struct {
	Level   NoticeLevel
	Kind    string
	Message string
}

// Result is what every intent hands back to the view: a fresh snapshot plus notices.
type Result struct {
	Snapshot state.Snapshot
	FirstRun bool
	Notices  []Notice
	// Rejected is set when the intent was refused and state did not change.
	Rejected bool
}

func noticeFor(err error) Notice {
	var (
		verr *domain.ValidationError
		lerr *domain.LoadError
		serr *domain.SaveError
		ierr *domain.ImportError
	)

	switch {
	case errors.As(err, &verr):
		return Notice{Level: LevelWarning, Kind: KindValidation, Message: verr.Error()}
	case errors.As(err, &lerr):
		return Notice{Level: LevelWarning, Kind: KindLoad, Message: "Saved data could not be read, starting fresh: " + lerr.Error()}
	case errors.As(err, &serr):
		if serr.Kind == domain.SaveQuotaExceeded {
			return Notice{Level: LevelError, Kind: KindSaveQuota, Message: "Storage is full, changes are kept until the app closes"}
		}
		return Notice{Level: LevelError, Kind: KindSave, Message: "Changes could not be saved: " + serr.Error()}
	case errors.As(err, &ierr):
		if ierr.Kind == domain.ImportMalformedDocument {
			return Notice{Level: LevelError, Kind: KindImportMalformed, Message: "Import file is not a backup document"}
		}
		return Notice{Level: LevelError, Kind: KindImportParse, Message: "Import file could not be read: " + ierr.Error()}
	default:
		return Notice{Level: LevelError, Kind: "internal", Message: err.Error()}
	}
}
