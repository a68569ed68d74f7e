package models

// Level is the privilege a user holds on a project.
//
// Levels are strictly ordered:
//   - owner: manage grants, plus everything writer can do
//   - writer: insert and update child records, update the project
//   - reader: see the project and its records
//
// Deleting is not part of the ladder; it needs the separate delete
// capability (see Capability).
type Level string

const (
	LevelNone   Level = ""
	LevelReader Level = "reader"
	LevelWriter Level = "writer"
	LevelOwner  Level = "owner"
)

// Rank returns the numeric position of l: 0 none, 1 reader, 2 writer, 3 owner.
func (l Level) Rank() int {
	switch l {
	case LevelReader:
		return 1
	case LevelWriter:
		return 2
	case LevelOwner:
		return 3
	default:
		return 0
	}
}

// CanRead returns true if l allows seeing the project and its records.
func (l Level) CanRead() bool { return l.Rank() >= LevelReader.Rank() }

// CanWrite returns true if l allows inserting and updating.
func (l Level) CanWrite() bool { return l.Rank() >= LevelWriter.Rank() }

// CanAdmin returns true if l allows managing grants.
func (l Level) CanAdmin() bool { return l == LevelOwner }

// IsValid reports whether l can be stored in a grant. LevelNone is not valid.
func (l Level) IsValid() bool {
	switch l {
	case LevelReader, LevelWriter, LevelOwner:
		return true
	}
	return false
}

func (l Level) String() string {
	if l == LevelNone {
		return "none"
	}
	return string(l)
}

// ParseLevel converts s to a Level, returning ErrInvalidLevel for anything
// other than reader, writer or owner.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.IsValid() {
		return LevelNone, ErrInvalidLevel
	}
	return l, nil
}

// MaxLevel returns the higher of a and b.
func MaxLevel(a, b Level) Level {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}
